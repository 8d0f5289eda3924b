package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
)

func seedOnlineOrder(env *testEnv, code, coffee, quantity, temp, sugar, status string) {
	_ = env.remote.AppendRow(context.Background(), store.TableOnlineOrders,
		[]string{code, coffee, quantity, temp, sugar, "0", "0", "0", status})
}

func TestOnlineOrderFullFulfilment(t *testing.T) {
	env := newTestEnv(t, script("ORD7"), time.Second)
	seedOnlineOrder(env, "ORD7", "Espresso", "2", "Hot", "1", "Pending")

	require.NoError(t, env.online.ProcessScan(context.Background()))

	espresso, _ := env.cache.Coffee("Espresso")
	assert.Equal(t, 8, espresso.Stock)
	assert.Equal(t, "8", env.remote.Cell(store.TableCoffee, 2, env.layout.CoffeeStockCol))

	// The order row is closed out: Completed with nothing left to collect.
	assert.Equal(t, "Completed", env.remote.Cell(store.TableOnlineOrders, 2, 9))
	assert.Equal(t, "0", env.remote.Cell(store.TableOnlineOrders, 2, 3))

	drained := env.queue.DrainAll()
	require.Len(t, drained, 2)
	adjust, ok := drained[0].(cache.AdjustAdditive)
	require.True(t, ok)
	assert.Equal(t, model.AdditiveSugar, adjust.Additive)
	assert.Equal(t, -2, adjust.Delta)

	sale, ok := drained[1].(cache.AppendSale)
	require.True(t, ok)
	assert.Equal(t, "x2", sale.Record.QuantityLabel)
	assert.Equal(t, 30000, sale.Record.TotalPrice)
	assert.Equal(t, model.MethodOnline, sale.Record.Method)
	assert.Equal(t, "Sugar: 1", sale.Record.Composition)
}

func TestOnlineOrderPartialFulfilment(t *testing.T) {
	env := newTestEnv(t, script("ORD42"), time.Second)
	// Latte has 5 in stock but the order wants 8.
	seedOnlineOrder(env, "ORD42", "Latte", "8", "Cold", "0", "Pending")

	require.NoError(t, env.online.ProcessScan(context.Background()))

	latte, _ := env.cache.Coffee("Latte")
	assert.Equal(t, 0, latte.Stock)
	assert.Equal(t, "0", env.remote.Cell(store.TableCoffee, 3, env.layout.CoffeeStockCol))

	// Three cups stay on the order and it remains pending.
	assert.Equal(t, "3", env.remote.Cell(store.TableOnlineOrders, 2, 3))
	assert.Equal(t, "Pending", env.remote.Cell(store.TableOnlineOrders, 2, 9))
	assert.Contains(t, env.out.String(), "3 cup(s) remain")

	drained := env.queue.DrainAll()
	require.Len(t, drained, 1)
	sale, ok := drained[0].(cache.AppendSale)
	require.True(t, ok)
	assert.Equal(t, "x5", sale.Record.QuantityLabel)
	assert.Equal(t, 100000, sale.Record.TotalPrice)
}

func TestOnlineOrderAlreadyCompleted(t *testing.T) {
	env := newTestEnv(t, script("ORD7"), time.Second)
	seedOnlineOrder(env, "ORD7", "Espresso", "0", "Hot", "0", "Completed")

	require.NoError(t, env.online.ProcessScan(context.Background()))
	assert.Contains(t, env.out.String(), "already been completed")
	assert.Zero(t, env.queue.Len())
}

func TestOnlineOrderUnknownCode(t *testing.T) {
	env := newTestEnv(t, script("NOPE"), time.Second)

	require.NoError(t, env.online.ProcessScan(context.Background()))
	assert.Contains(t, env.out.String(), "No order found")
}

func TestOnlineOrderOutOfStockCoffee(t *testing.T) {
	env := newTestEnv(t, script("ORD9"), time.Second)
	seedOnlineOrder(env, "ORD9", "Latte", "2", "Hot", "0", "Pending")
	env.cache.Apply(cache.DecrementStock{Coffee: "Latte", Quantity: 5})

	require.NoError(t, env.online.ProcessScan(context.Background()))

	assert.Contains(t, env.out.String(), "out of stock")
	// The row is untouched so the customer can come back later.
	assert.Equal(t, "2", env.remote.Cell(store.TableOnlineOrders, 2, 3))
	assert.Equal(t, "Pending", env.remote.Cell(store.TableOnlineOrders, 2, 9))
	assert.Zero(t, env.queue.Len())
}

func TestOnlineOrderUnknownCoffeeSkipped(t *testing.T) {
	env := newTestEnv(t, script("ORD5"), time.Second)
	seedOnlineOrder(env, "ORD5", "Mocha", "1", "Hot", "0", "Pending")

	require.NoError(t, env.online.ProcessScan(context.Background()))
	assert.Contains(t, env.out.String(), "no longer on the menu")
	assert.Zero(t, env.queue.Len())
}

func TestOnlineOrderMalformedRowSkipped(t *testing.T) {
	env := newTestEnv(t, script("ORD3"), time.Second)
	// Zero quantity fails validation and must not be dispensed.
	seedOnlineOrder(env, "ORD3", "Espresso", "0", "Hot", "0", "Pending")

	require.NoError(t, env.online.ProcessScan(context.Background()))
	assert.Contains(t, env.out.String(), "No order found")
	assert.Zero(t, env.queue.Len())
}

func TestOnlineOrderCancelAtPrompt(t *testing.T) {
	env := newTestEnv(t, script("x"), time.Second)
	require.NoError(t, env.online.ProcessScan(context.Background()))
	assert.Zero(t, env.queue.Len())
}

func TestOnlineOrderMultipleLinesOneCode(t *testing.T) {
	env := newTestEnv(t, script("ORD11"), time.Second)
	seedOnlineOrder(env, "ORD11", "Espresso", "1", "Hot", "0", "Pending")
	seedOnlineOrder(env, "ORD11", "Latte", "1", "Cold", "0", "Pending")

	require.NoError(t, env.online.ProcessScan(context.Background()))

	espresso, _ := env.cache.Coffee("Espresso")
	latte, _ := env.cache.Coffee("Latte")
	assert.Equal(t, 9, espresso.Stock)
	assert.Equal(t, 4, latte.Stock)
	assert.Equal(t, "Completed", env.remote.Cell(store.TableOnlineOrders, 2, 9))
	assert.Equal(t, "Completed", env.remote.Cell(store.TableOnlineOrders, 3, 9))
}
