package cache

import (
	"fmt"
	"sync"

	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
)

// Cache is the in-memory mirror of the remote tables and the single source
// of truth for every read during a session. All access goes through its
// mutex; critical sections cover one table update at a time and never span
// network I/O.
type Cache struct {
	mu sync.Mutex

	coffees     map[string]*model.CoffeeEntry
	coffeeOrder []string

	additives    map[string]int
	additiveRows map[string]int

	refs       []*model.PaymentReference
	refWaiters map[string]chan struct{}

	// Session sales tail. salesPushed marks how many records have reached
	// the remote store; the synchronizer appends the rest each cycle.
	sales       []model.SaleRecord
	salesPushed int
}

func New() *Cache {
	return &Cache{
		coffees:      make(map[string]*model.CoffeeEntry),
		additives:    make(map[string]int),
		additiveRows: make(map[string]int),
		refWaiters:   make(map[string]chan struct{}),
	}
}

// SetCoffees replaces the coffee table, preserving the given order for menu
// numbering.
func (c *Cache) SetCoffees(entries []model.CoffeeEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coffees = make(map[string]*model.CoffeeEntry, len(entries))
	c.coffeeOrder = c.coffeeOrder[:0]
	for i := range entries {
		e := entries[i]
		c.coffees[e.Name] = &e
		c.coffeeOrder = append(c.coffeeOrder, e.Name)
	}
}

// SetAdditive installs one additive level with its remote row number.
func (c *Cache) SetAdditive(name string, level, row int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.additives[name] = level
	c.additiveRows[name] = row
}

// SetReferences replaces the payment reference table.
func (c *Cache) SetReferences(refs []model.PaymentReference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs = c.refs[:0]
	for i := range refs {
		r := refs[i]
		c.refs = append(c.refs, &r)
	}
}

// Apply executes one queued mutation against the cache. Stock and additive
// decrements clamp at zero: admission control in the workflow layer is the
// primary defense, clamping is the safety net.
func (c *Cache) Apply(m Mutation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch op := m.(type) {
	case DecrementStock:
		if coffee, ok := c.coffees[op.Coffee]; ok {
			coffee.Stock = max(0, coffee.Stock-op.Quantity)
		}
	case Restock:
		if coffee, ok := c.coffees[op.Coffee]; ok {
			coffee.Stock += op.Quantity
		}
	case AdjustAdditive:
		if level, ok := c.additives[op.Additive]; ok {
			c.additives[op.Additive] = max(0, level+op.Delta)
		}
	case SetReferenceStatus:
		c.setReferenceStatusLocked(op.RefID, op.Status)
	case AppendSale:
		c.sales = append(c.sales, op.Record)
	}
}

// --- coffee table ---

// Menu returns a snapshot of every coffee in stable order.
func (c *Cache) Menu() []model.CoffeeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.CoffeeEntry, 0, len(c.coffeeOrder))
	for _, name := range c.coffeeOrder {
		out = append(out, *c.coffees[name])
	}
	return out
}

// Coffee returns a snapshot of one entry.
func (c *Cache) Coffee(name string) (model.CoffeeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coffee, ok := c.coffees[name]
	if !ok {
		return model.CoffeeEntry{}, false
	}
	return *coffee, true
}

// CoffeeByNumber resolves a menu number assigned by AssignMenuNumbers.
func (c *Cache) CoffeeByNumber(number int) (model.CoffeeEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, name := range c.coffeeOrder {
		if coffee := c.coffees[name]; coffee.Number == number && coffee.Number > 0 {
			return *coffee, true
		}
	}
	return model.CoffeeEntry{}, false
}

// AssignMenuNumbers renumbers in-stock coffees 1..n for the session and
// zeroes the rest. Returns how many are purchasable.
func (c *Cache) AssignMenuNumbers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	number := 0
	for _, name := range c.coffeeOrder {
		coffee := c.coffees[name]
		if coffee.Stock > 0 {
			number++
			coffee.Number = number
		} else {
			coffee.Number = 0
		}
	}
	return number
}

// --- admission control (synchronous path) ---

// ReserveLine admits one cart line: it atomically checks coffee stock and
// every additive level against the requested quantity and decrements them
// all, or changes nothing and reports the shortfall.
func (c *Cache) ReserveLine(coffeeName string, comp model.Composition, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	coffee, ok := c.coffees[coffeeName]
	if !ok {
		return fmt.Errorf("unknown coffee %q", coffeeName)
	}
	if coffee.Stock < quantity {
		return fmt.Errorf("%s stock is short: %d left", coffeeName, coffee.Stock)
	}
	for _, additive := range model.AdditiveNames {
		needed := comp.Amount(additive) * quantity
		if c.additives[additive] < needed {
			return fmt.Errorf("%s stock is short: %d portions left", additive, c.additives[additive])
		}
	}
	coffee.Stock -= quantity
	for _, additive := range model.AdditiveNames {
		c.additives[additive] -= comp.Amount(additive) * quantity
	}
	return nil
}

// ReleaseLine is the additive inverse of ReserveLine, used to roll back a
// canceled or abandoned cart line.
func (c *Cache) ReleaseLine(coffeeName string, comp model.Composition, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if coffee, ok := c.coffees[coffeeName]; ok {
		coffee.Stock += quantity
	}
	for _, additive := range model.AdditiveNames {
		c.additives[additive] += comp.Amount(additive) * quantity
	}
}

// --- synchronous write-through helpers ---

// RestockCoffee adds stock in place and reports the entry's remote row and
// new level so the caller can write the cell through immediately.
func (c *Cache) RestockCoffee(name string, quantity int) (newStock, row int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coffee, found := c.coffees[name]
	if !found {
		return 0, 0, false
	}
	coffee.Stock += quantity
	return coffee.Stock, coffee.Row, true
}

// RestockAdditive adds portions in place, reporting the remote row and new
// level.
func (c *Cache) RestockAdditive(name string, quantity int) (newLevel, row int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	level, found := c.additives[name]
	if !found {
		return 0, 0, false
	}
	c.additives[name] = level + quantity
	return c.additives[name], c.additiveRows[name], true
}

// DecrementStockDirect removes fulfilled online-order cups in place,
// clamped at zero, reporting the remote row and new level.
func (c *Cache) DecrementStockDirect(name string, quantity int) (newStock, row int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	coffee, found := c.coffees[name]
	if !found {
		return 0, 0, false
	}
	coffee.Stock = max(0, coffee.Stock-quantity)
	return coffee.Stock, coffee.Row, true
}

// AdditiveLevel reads one additive's remaining portions.
func (c *Cache) AdditiveLevel(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.additives[name]
}

// Additives returns name/level pairs in display order.
func (c *Cache) Additives() []AdditiveLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]AdditiveLevel, 0, len(model.AdditiveNames))
	for _, name := range model.AdditiveNames {
		if level, ok := c.additives[name]; ok {
			out = append(out, AdditiveLevel{Name: name, Level: level})
		}
	}
	return out
}

type AdditiveLevel struct {
	Name  string
	Level int
}

// --- payment references ---

// AppendReference registers a new pending reference and assigns its remote
// row number from the table length.
func (c *Cache) AppendReference(ref model.PaymentReference) model.PaymentReference {
	c.mu.Lock()
	defer c.mu.Unlock()
	ref.Row = len(c.refs) + store.DataRowOffset
	c.refs = append(c.refs, &ref)
	return ref
}

// Reference returns a snapshot of one reference by ID.
func (c *Cache) Reference(refID string) (model.PaymentReference, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ref := range c.refs {
		if ref.RefID == refID {
			return *ref, true
		}
	}
	return model.PaymentReference{}, false
}

// SetReferenceStatus commits a status transition. Only Pending may move,
// and only to a terminal state; the first terminal write wins and any
// later write is a no-op. Returns whether this call committed the change.
func (c *Cache) SetReferenceStatus(refID string, status model.RefStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setReferenceStatusLocked(refID, status)
}

func (c *Cache) setReferenceStatusLocked(refID string, status model.RefStatus) bool {
	for _, ref := range c.refs {
		if ref.RefID != refID {
			continue
		}
		if ref.Status.Terminal() || !status.Terminal() {
			return false
		}
		ref.Status = status
		if waiter, ok := c.refWaiters[refID]; ok {
			close(waiter)
			delete(c.refWaiters, refID)
		}
		return true
	}
	return false
}

// ReferenceDone returns a channel closed when the reference reaches a
// terminal state. Already-terminal references yield a closed channel.
func (c *Cache) ReferenceDone(refID string) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ref := range c.refs {
		if ref.RefID == refID && ref.Status.Terminal() {
			done := make(chan struct{})
			close(done)
			return done
		}
	}
	waiter, ok := c.refWaiters[refID]
	if !ok {
		waiter = make(chan struct{})
		c.refWaiters[refID] = waiter
	}
	return waiter
}

// --- sales log ---

// Sales returns a copy of the session's sale records.
func (c *Cache) Sales() []model.SaleRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.SaleRecord(nil), c.sales...)
}

// --- snapshot for the synchronizer ---

// CellWrite is one remote cell update derived from the snapshot.
type CellWrite struct {
	Row   int
	Value string
}

// Snapshot captures everything the synchronizer pushes: per-row stock
// levels, additive levels, reference statuses, and the unpushed tail of
// the sales log. Taken under the lock so a cycle sees a consistent state;
// the push itself happens with the lock released.
type Snapshot struct {
	CoffeeStock    []CellWrite
	AdditiveLevels []CellWrite
	RefStatuses    []CellWrite
	PendingSales   []model.SaleRecord
	salesHigh      int
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{salesHigh: len(c.sales)}
	for _, name := range c.coffeeOrder {
		coffee := c.coffees[name]
		snap.CoffeeStock = append(snap.CoffeeStock, CellWrite{Row: coffee.Row, Value: itoa(coffee.Stock)})
	}
	for _, name := range model.AdditiveNames {
		if row, ok := c.additiveRows[name]; ok {
			snap.AdditiveLevels = append(snap.AdditiveLevels, CellWrite{Row: row, Value: itoa(c.additives[name])})
		}
	}
	for _, ref := range c.refs {
		snap.RefStatuses = append(snap.RefStatuses, CellWrite{Row: ref.Row, Value: string(ref.Status)})
	}
	snap.PendingSales = append(snap.PendingSales, c.sales[c.salesPushed:]...)
	return snap
}

// MarkSalesPushed advances the pushed watermark after a snapshot's pending
// sales reached the remote store. A failed push leaves the watermark
// alone so the records retry next cycle.
func (c *Cache) MarkSalesPushed(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snap.salesHigh > c.salesPushed {
		c.salesPushed = snap.salesHigh
	}
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
