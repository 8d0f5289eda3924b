package model

// CoffeeEntry mirrors one row of the remote coffee inventory table.
// Row keeps the remote row number so the synchronizer can address the
// stock cell directly. Number is the session-scoped menu number; 0 means
// the coffee is not currently purchasable.
type CoffeeEntry struct {
	Name   string
	Price  int
	Stock  int
	Row    int
	Number int
}

// Additive names, fixed set mirrored from the remote additive table.
const (
	AdditiveSugar     = "Sugar"
	AdditiveCreamer   = "Creamer"
	AdditiveMilk      = "Milk"
	AdditiveChocolate = "Chocolate"
)

// AdditiveNames in display order.
var AdditiveNames = []string{AdditiveSugar, AdditiveCreamer, AdditiveMilk, AdditiveChocolate}
