package manager

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/console"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
	"go-kopi-machine/internal/ws"
	"go-kopi-machine/pkg/validator"
)

// OnlineOrderManager redeems web orders at the machine. The online order
// table is read fresh on every scan because it is written by the web shop,
// not by this machine; the cache only mirrors tables the machine owns.
type OnlineOrderManager struct {
	cache  *cache.Cache
	queue  *cache.Queue
	prompt *console.Prompter
	remote store.Store
	layout cache.Layout
	hub    *ws.Hub
	log    zerolog.Logger
}

func NewOnlineOrderManager(
	c *cache.Cache,
	q *cache.Queue,
	prompt *console.Prompter,
	remote store.Store,
	layout cache.Layout,
	hub *ws.Hub,
	log zerolog.Logger,
) *OnlineOrderManager {
	return &OnlineOrderManager{
		cache:  c,
		queue:  q,
		prompt: prompt,
		remote: remote,
		layout: layout,
		hub:    hub,
		log:    log,
	}
}

// onlineOrderRow is one parsed line of the online order table.
type onlineOrderRow struct {
	Row         int
	Code        string `validate:"required"`
	Coffee      string `validate:"required"`
	Quantity    int    `validate:"gt=0"`
	Temperature string `validate:"required"`
	Sugar       int    `validate:"gte=0,lte=5"`
	Creamer     int    `validate:"gte=0,lte=5"`
	Milk        int    `validate:"gte=0,lte=5"`
	Chocolate   int    `validate:"gte=0,lte=5"`
	Status      string `validate:"required"`
}

func (r onlineOrderRow) composition() model.Composition {
	return model.Composition{Sugar: r.Sugar, Creamer: r.Creamer, Milk: r.Milk, Chocolate: r.Chocolate}
}

// ProcessScan asks for an order code and fulfils every pending line under
// it, partially when stock runs short. A non-nil error is a console
// failure; remote trouble is reported to the customer and logged instead.
func (m *OnlineOrderManager) ProcessScan(ctx context.Context) error {
	code, err := m.prompt.Ask("Enter your order code (x to cancel): ")
	if err != nil {
		return err
	}
	if strings.EqualFold(code, cancelKey) || code == "" {
		return nil
	}

	header, err := m.remote.Header(ctx, store.TableOnlineOrders)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to read online order header")
		m.prompt.Printf("Online orders are unreachable right now, please try again later.\n")
		return nil
	}
	statusCol := store.ColumnIndex(header, store.ColStatus)
	quantityCol := store.ColumnIndex(header, store.ColOrderQuantity)
	if statusCol == 0 || quantityCol == 0 {
		m.log.Error().Msg("online order table is missing Status or Quantity columns")
		m.prompt.Printf("Online orders are unreachable right now, please try again later.\n")
		return nil
	}

	rows, err := m.remote.ReadRows(ctx, store.TableOnlineOrders)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to read online orders")
		m.prompt.Printf("Online orders are unreachable right now, please try again later.\n")
		return nil
	}

	pending, seenCompleted := m.matchCode(rows, code)
	if len(pending) == 0 {
		if seenCompleted {
			m.prompt.Printf("Order %s has already been completed.\n", code)
		} else {
			m.prompt.Printf("No order found for code %s.\n", code)
		}
		return nil
	}

	anyFulfilled := false
	for _, order := range pending {
		if m.fulfil(ctx, order, statusCol, quantityCol) {
			anyFulfilled = true
		}
	}
	if anyFulfilled {
		m.prompt.Printf("Enjoy your coffee!\n")
	}
	return nil
}

// matchCode splits the table into this code's pending lines and a flag for
// whether the code exists at all among completed lines.
func (m *OnlineOrderManager) matchCode(rows []store.Row, code string) ([]onlineOrderRow, bool) {
	var pending []onlineOrderRow
	seenCompleted := false
	for i, row := range rows {
		if !strings.EqualFold(row[store.ColOrderCode], code) {
			continue
		}
		if !strings.EqualFold(row[store.ColStatus], string(model.RefPending)) {
			seenCompleted = true
			continue
		}
		order := onlineOrderRow{
			Row:         i + store.DataRowOffset,
			Code:        row[store.ColOrderCode],
			Coffee:      row[store.ColCoffeeName],
			Quantity:    row.Int(store.ColOrderQuantity),
			Temperature: row[store.ColOrderTemp],
			Sugar:       row.Int(model.AdditiveSugar),
			Creamer:     row.Int(model.AdditiveCreamer),
			Milk:        row.Int(model.AdditiveMilk),
			Chocolate:   row.Int(model.AdditiveChocolate),
			Status:      row[store.ColStatus],
		}
		if errs := validator.ValidateStruct(order); len(errs) > 0 {
			m.log.Warn().Int("row", order.Row).Str("field", errs[0].FailedField).Msg("skipping malformed online order row")
			continue
		}
		pending = append(pending, order)
	}
	return pending, seenCompleted
}

// fulfil dispenses as much of one order line as stock allows. A full
// fulfilment completes the remote row; a partial one writes the remaining
// quantity back and leaves the row pending for the next visit.
func (m *OnlineOrderManager) fulfil(ctx context.Context, order onlineOrderRow, statusCol, quantityCol int) bool {
	coffee, ok := m.cache.Coffee(order.Coffee)
	if !ok {
		m.prompt.Printf("%s is no longer on the menu, skipping that line.\n", order.Coffee)
		return false
	}
	available := coffee.Stock
	if available <= 0 {
		m.prompt.Printf("%s is out of stock, please come back after a restock.\n", order.Coffee)
		return false
	}

	fulfilled := min(available, order.Quantity)
	remaining := order.Quantity - fulfilled

	newStock, stockRow, ok := m.cache.DecrementStockDirect(order.Coffee, fulfilled)
	if !ok {
		return false
	}
	// Online stock moves are written through immediately: the web shop
	// admits orders from the remote table, so waiting a sync cycle would
	// oversell.
	if err := m.remote.WriteCell(ctx, store.TableCoffee, stockRow, m.layout.CoffeeStockCol, strconv.Itoa(newStock)); err != nil {
		m.log.Warn().Err(err).Str("coffee", order.Coffee).Msg("failed to write stock through, synchronizer will catch up")
	}

	if remaining == 0 {
		if err := m.remote.WriteCell(ctx, store.TableOnlineOrders, order.Row, statusCol, string(model.RefCompleted)); err != nil {
			m.log.Error().Err(err).Int("row", order.Row).Msg("failed to complete online order row")
		}
		if err := m.remote.WriteCell(ctx, store.TableOnlineOrders, order.Row, quantityCol, "0"); err != nil {
			m.log.Error().Err(err).Int("row", order.Row).Msg("failed to zero online order quantity")
		}
		m.prompt.Printf("Dispensing %dx %s (%s).\n", fulfilled, order.Coffee, order.Temperature)
	} else {
		if err := m.remote.WriteCell(ctx, store.TableOnlineOrders, order.Row, quantityCol, strconv.Itoa(remaining)); err != nil {
			m.log.Error().Err(err).Int("row", order.Row).Msg("failed to write remaining online order quantity")
		}
		m.prompt.Printf("Dispensing %dx %s (%s); %d cup(s) remain on your order.\n",
			fulfilled, order.Coffee, order.Temperature, remaining)
	}

	comp := order.composition()
	for _, additive := range model.AdditiveNames {
		if amount := comp.Amount(additive) * fulfilled; amount > 0 {
			m.queue.Enqueue(cache.AdjustAdditive{Additive: additive, Delta: -amount})
		}
	}
	m.queue.Enqueue(cache.AppendSale{Record: model.SaleRecord{
		CoffeeName:    order.Coffee,
		Temperature:   order.Temperature,
		Composition:   comp.DescribeNonZero(),
		QuantityLabel: model.QuantityLabel(fulfilled),
		TotalPrice:    coffee.Price * fulfilled,
		Method:        model.MethodOnline,
	}})

	m.hub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Message: "online order fulfilled",
		Data: map[string]interface{}{
			"coffee":    order.Coffee,
			"fulfilled": fulfilled,
			"remaining": remaining,
			"stock":     newStock,
		},
	})
	return true
}
