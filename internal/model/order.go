package model

import "fmt"

type Temperature string

const (
	TempHot  Temperature = "Hot"
	TempCold Temperature = "Cold"
)

// ParseTemperature maps a remote-row value to a Temperature, accepting the
// labels in any case.
func ParseTemperature(s string) (Temperature, bool) {
	switch s {
	case "Hot", "hot", "HOT":
		return TempHot, true
	case "Cold", "cold", "COLD":
		return TempCold, true
	}
	return "", false
}

// Composition is the per-cup additive selection, each in [0,5] portions.
// Value equality is the cart-merge key together with coffee and temperature.
type Composition struct {
	Sugar     int
	Creamer   int
	Milk      int
	Chocolate int
}

// Amount returns the portions selected for the named additive.
func (c Composition) Amount(additive string) int {
	switch additive {
	case AdditiveSugar:
		return c.Sugar
	case AdditiveCreamer:
		return c.Creamer
	case AdditiveMilk:
		return c.Milk
	case AdditiveChocolate:
		return c.Chocolate
	}
	return 0
}

// Describe formats the composition for sale records and summaries.
func (c Composition) Describe() string {
	return fmt.Sprintf("Sugar (%d), Creamer (%d), Milk (%d), Chocolate (%d)",
		c.Sugar, c.Creamer, c.Milk, c.Chocolate)
}

// DescribeNonZero lists only the selected additives, "No additives" when all
// are zero. Used for online-order sale records.
func (c Composition) DescribeNonZero() string {
	parts := []string{}
	for _, name := range AdditiveNames {
		if amt := c.Amount(name); amt > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", name, amt))
		}
	}
	if len(parts) == 0 {
		return "No additives"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

// CartLine is one order line. Lines with equal (coffee name, temperature,
// composition) merge by summing quantity.
type CartLine struct {
	CoffeeName  string
	UnitPrice   int
	Quantity    int
	Temperature Temperature
	Composition Composition
}

// LinePrice is unit price times quantity. Integer currency units
// throughout, no rounding.
func (l CartLine) LinePrice() int {
	return l.UnitPrice * l.Quantity
}

// MergeLine inserts line into cart, folding it into an existing line with
// the same merge key if one exists. Returns the updated cart.
func MergeLine(cart []CartLine, line CartLine) []CartLine {
	for i := range cart {
		if cart[i].CoffeeName == line.CoffeeName &&
			cart[i].Temperature == line.Temperature &&
			cart[i].Composition == line.Composition {
			cart[i].Quantity += line.Quantity
			return cart
		}
	}
	return append(cart, line)
}

// CartTotal sums the line prices.
func CartTotal(cart []CartLine) int {
	total := 0
	for _, l := range cart {
		total += l.LinePrice()
	}
	return total
}
