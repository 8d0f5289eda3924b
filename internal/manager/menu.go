package manager

import (
	"context"
	"fmt"
	"strings"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
)

// MenuManager derives the session menu from the cache: stable numbers for
// in-stock coffees plus a bestseller star.
type MenuManager struct {
	cache      *cache.Cache
	bestseller string
}

func NewMenuManager(c *cache.Cache) *MenuManager {
	return &MenuManager{cache: c}
}

// Refresh renumbers the menu from current cache state and records the
// bestseller to star. Returns how many coffees are purchasable.
func (m *MenuManager) Refresh(bestseller string) int {
	m.bestseller = bestseller
	return m.cache.AssignMenuNumbers()
}

// Render formats the purchasable menu.
func (m *MenuManager) Render() string {
	var b strings.Builder
	b.WriteString("================ Coffee Menu =================\n")
	for _, coffee := range m.cache.Menu() {
		if coffee.Number == 0 {
			continue
		}
		star := ""
		if coffee.Name == m.bestseller {
			star = " ★"
		}
		fmt.Fprintf(&b, "%d. %s%s - Rp%d - Stock: %d\n", coffee.Number, coffee.Name, star, coffee.Price, coffee.Stock)
	}
	b.WriteString("=============================================")
	return b.String()
}

// BestsellingCoffee aggregates the remote sales log by coffee name using
// the "xN" quantity labels. An unreachable remote yields no bestseller
// rather than an error; the star is cosmetic.
func BestsellingCoffee(ctx context.Context, st store.Store) string {
	rows, err := st.ReadRows(ctx, store.TableSales)
	if err != nil {
		return ""
	}
	counts := make(map[string]int)
	for _, row := range rows {
		name := row[store.ColCoffeeName]
		if name == "" {
			continue
		}
		counts[name] += model.ParseQuantityLabel(row[store.ColOrderQuantity])
	}
	best, bestCount := "", 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && best != "" && name < best) {
			best, bestCount = name, count
		}
	}
	return best
}
