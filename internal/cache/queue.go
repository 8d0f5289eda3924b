package cache

import (
	"sync"

	"go-kopi-machine/internal/model"
)

// Mutation is a recorded write intent waiting in the queue. It is a sealed
// sum type so the apply step can switch over every variant.
type Mutation interface{ isMutation() }

// DecrementStock removes sold cups from a coffee's stock, clamped at zero.
type DecrementStock struct {
	Coffee   string
	Quantity int
}

// Restock adds cups to a coffee's stock.
type Restock struct {
	Coffee   string
	Quantity int
}

// AdjustAdditive shifts an additive level by a delta (negative for
// consumption), clamped at zero.
type AdjustAdditive struct {
	Additive string
	Delta    int
}

// SetReferenceStatus moves a payment reference to a new status. Terminal
// states are monotonic: once Completed or Expired, the status never
// changes again.
type SetReferenceStatus struct {
	RefID  string
	Status model.RefStatus
}

// AppendSale appends one line to the sales log.
type AppendSale struct {
	Record model.SaleRecord
}

func (DecrementStock) isMutation()     {}
func (Restock) isMutation()            {}
func (AdjustAdditive) isMutation()     {}
func (SetReferenceStatus) isMutation() {}
func (AppendSale) isMutation()         {}

// Queue is the unbounded FIFO of pending mutations. Any component may
// enqueue; only the synchronizer drains.
type Queue struct {
	mu      sync.Mutex
	pending []Mutation
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(m Mutation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, m)
}

// DrainAll removes and returns every queued mutation in enqueue order.
func (q *Queue) DrainAll() []Mutation {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.pending
	q.pending = nil
	return drained
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
