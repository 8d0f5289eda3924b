package model

import (
	"fmt"
	"strconv"
	"strings"
)

// SaleRecord is one append-only line of the remote sales log. Produced only
// on successful checkout, never mutated.
type SaleRecord struct {
	CoffeeName    string
	Temperature   string
	Composition   string
	QuantityLabel string // "x2"
	TotalPrice    int
	Method        string
}

// QuantityLabel formats a quantity the way the sales table stores it.
func QuantityLabel(quantity int) string {
	return fmt.Sprintf("x%d", quantity)
}

// ParseQuantityLabel reads an "xN" label back into a count, 0 when the
// label is malformed.
func ParseQuantityLabel(label string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(label), "x"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Values lays the record out in remote column order.
func (r SaleRecord) Values() []string {
	return []string{
		r.CoffeeName,
		r.Temperature,
		r.Composition,
		r.QuantityLabel,
		strconv.Itoa(r.TotalPrice),
		r.Method,
	}
}
