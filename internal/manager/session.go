package manager

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/console"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
	"go-kopi-machine/internal/ws"
)

// SessionController owns the terminal's main loop. Every pass through the
// main menu is one session: the menu is renumbered from current stock, a
// timed-out session is abandoned and a fresh one started, and a shutdown
// request propagates out for the final flush.
type SessionController struct {
	cache   *cache.Cache
	queue   *cache.Queue
	prompt  *console.Prompter
	remote  store.Store
	menu    *MenuManager
	orders  *OrderManager
	payment *PaymentManager
	online  *OnlineOrderManager
	admin   *AdminManager
	hub     *ws.Hub
	log     zerolog.Logger
}

func NewSessionController(
	c *cache.Cache,
	q *cache.Queue,
	prompt *console.Prompter,
	remote store.Store,
	menu *MenuManager,
	orders *OrderManager,
	payment *PaymentManager,
	online *OnlineOrderManager,
	admin *AdminManager,
	hub *ws.Hub,
	log zerolog.Logger,
) *SessionController {
	return &SessionController{
		cache:   c,
		queue:   q,
		prompt:  prompt,
		remote:  remote,
		menu:    menu,
		orders:  orders,
		payment: payment,
		online:  online,
		admin:   admin,
		hub:     hub,
		log:     log,
	}
}

// Run serves sessions until the input closes, the context is canceled or
// an administrator shuts the machine down. ErrShutdown is returned so the
// caller can flush and exit cleanly; everything else ends the loop with
// nil.
func (s *SessionController) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := s.session(ctx)
		switch {
		case err == nil:
		case errors.Is(err, console.ErrTimeout):
			s.prompt.Printf("\nSession timed out, starting over.\n\n")
		case errors.Is(err, ErrShutdown):
			return ErrShutdown
		case errors.Is(err, console.ErrClosed):
			return nil
		default:
			s.log.Error().Err(err).Msg("session failed")
		}
	}
}

// session runs one main-menu interaction.
func (s *SessionController) session(ctx context.Context) error {
	bestseller := BestsellingCoffee(ctx, s.remote)
	purchasable := s.menu.Refresh(bestseller)

	s.prompt.Printf("\nWelcome to the coffee machine!\n")
	s.prompt.Printf("1. Order coffee\n2. Redeem online order\n3. Admin\n")
	choice, err := s.prompt.Ask("Choose an option: ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		if purchasable == 0 {
			s.prompt.Printf("Sorry, everything is sold out right now.\n")
			return nil
		}
		return s.startOrder(ctx)
	case "2":
		return s.online.ProcessScan(ctx)
	case "3":
		return s.admin.Run(ctx)
	}
	s.prompt.Printf("Please choose 1-3.\n")
	return nil
}

// startOrder walks one order from cart to payment. Cart lines arrive
// holding stock reservations; a failed or abandoned payment releases
// them, a successful one keeps the decrements and records the sales.
func (s *SessionController) startOrder(ctx context.Context) error {
	cart, err := s.orders.BuildCart()
	if err != nil {
		return err
	}
	if len(cart) == 0 {
		return nil
	}

	total := s.orders.Summarize(cart)
	paid, method, err := s.payment.ProcessPayment(ctx, total)
	if err != nil {
		s.release(cart)
		return err
	}
	if !paid {
		s.release(cart)
		return nil
	}

	for _, line := range cart {
		s.queue.Enqueue(cache.AppendSale{Record: model.SaleRecord{
			CoffeeName:    line.CoffeeName,
			Temperature:   string(line.Temperature),
			Composition:   line.Composition.Describe(),
			QuantityLabel: model.QuantityLabel(line.Quantity),
			TotalPrice:    line.LinePrice(),
			Method:        method,
		}})
	}
	s.hub.Publish(ws.Event{
		Type:    ws.EventSale,
		Message: "sale completed",
		Data:    map[string]interface{}{"lines": len(cart), "total": total, "method": method},
	})
	s.log.Info().Int("total", total).Str("method", method).Int("lines", len(cart)).Msg("sale completed")
	return nil
}

func (s *SessionController) release(cart []model.CartLine) {
	for _, line := range cart {
		s.cache.ReleaseLine(line.CoffeeName, line.Composition, line.Quantity)
	}
}
