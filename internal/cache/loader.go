package cache

import (
	"context"
	"fmt"
	"time"

	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
)

// RefTimeFormat is how the remote reference table stores timestamps.
const RefTimeFormat = "02-01-2006, 15:04:05"

// Layout records the column numbers the synchronizer writes to, resolved
// once from the remote headers at startup.
type Layout struct {
	CoffeeStockCol   int
	AdditiveLevelCol int
	RefStatusCol     int
}

// Load reads the remote tables into a fresh cache and resolves the write
// layout. Called once at startup; a failure here is fatal since the
// terminal cannot operate without an initial mirror.
func Load(ctx context.Context, st store.Store) (*Cache, Layout, error) {
	c := New()
	layout := Layout{}

	coffeeHeader, err := st.Header(ctx, store.TableCoffee)
	if err != nil {
		return nil, layout, fmt.Errorf("loading coffee table: %w", err)
	}
	layout.CoffeeStockCol = store.ColumnIndex(coffeeHeader, store.ColStock)

	coffeeRows, err := st.ReadRows(ctx, store.TableCoffee)
	if err != nil {
		return nil, layout, fmt.Errorf("loading coffee table: %w", err)
	}
	entries := make([]model.CoffeeEntry, 0, len(coffeeRows))
	for i, row := range coffeeRows {
		entries = append(entries, model.CoffeeEntry{
			Name:  row[store.ColCoffeeName],
			Price: row.Int(store.ColCoffeePrice),
			Stock: row.Int(store.ColStock),
			Row:   i + store.DataRowOffset,
		})
	}
	c.SetCoffees(entries)

	additiveHeader, err := st.Header(ctx, store.TableAdditives)
	if err != nil {
		return nil, layout, fmt.Errorf("loading additive table: %w", err)
	}
	layout.AdditiveLevelCol = store.ColumnIndex(additiveHeader, store.ColStock)

	additiveRows, err := st.ReadRows(ctx, store.TableAdditives)
	if err != nil {
		return nil, layout, fmt.Errorf("loading additive table: %w", err)
	}
	for i, row := range additiveRows {
		c.SetAdditive(row[store.ColAdditiveName], row.Int(store.ColStock), i+store.DataRowOffset)
	}

	refHeader, err := st.Header(ctx, store.TableReferences)
	if err != nil {
		return nil, layout, fmt.Errorf("loading reference table: %w", err)
	}
	layout.RefStatusCol = store.ColumnIndex(refHeader, store.ColStatus)

	refRows, err := st.ReadRows(ctx, store.TableReferences)
	if err != nil {
		return nil, layout, fmt.Errorf("loading reference table: %w", err)
	}
	refs := make([]model.PaymentReference, 0, len(refRows))
	for i, row := range refRows {
		createdAt, _ := time.Parse(RefTimeFormat, row[store.ColRefTime])
		refs = append(refs, model.PaymentReference{
			RefID:     row[store.ColRefID],
			Amount:    row.Int(store.ColRefAmount),
			Method:    row[store.ColRefMethod],
			CreatedAt: createdAt,
			Status:    model.RefStatus(row[store.ColStatus]),
			Row:       i + store.DataRowOffset,
		})
	}
	c.SetReferences(refs)

	return c, layout, nil
}
