package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
)

func TestAdminAuthExhaustsAttempts(t *testing.T) {
	env := newTestEnv(t, script("1111", "2222", "3333", "4444", "5555"), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))
	assert.Contains(t, env.out.String(), "Too many failed attempts")
	assert.NotContains(t, env.out.String(), "Admin Menu")
}

func TestAdminAuthNonNumericConsumesAttempt(t *testing.T) {
	env := newTestEnv(t, script("abc", "def", "ghi", "jkl", "mno"), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))
	assert.Contains(t, env.out.String(), "Too many failed attempts")
}

func TestAdminAuthSucceedsWithinAttempts(t *testing.T) {
	env := newTestEnv(t, script("0000", testAdminCode, "5"), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))
	assert.Contains(t, env.out.String(), "Admin Menu")
}

func TestAdminRestockCoffeeWritesThrough(t *testing.T) {
	env := newTestEnv(t, script(
		testAdminCode,
		"1",  // restock coffee
		"2",  // Latte
		"10", // ten cups
		"5",  // back
	), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))

	latte, _ := env.cache.Coffee("Latte")
	assert.Equal(t, 15, latte.Stock)
	assert.Equal(t, "15", env.remote.Cell(store.TableCoffee, 3, env.layout.CoffeeStockCol))
	assert.Contains(t, env.out.String(), "Latte restocked to 15")
}

func TestAdminRestockAdditiveWritesThrough(t *testing.T) {
	env := newTestEnv(t, script(
		testAdminCode,
		"2",  // restock additives
		"1",  // Sugar
		"25", // portions
		"5",
	), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))

	assert.Equal(t, 75, env.cache.AdditiveLevel(model.AdditiveSugar))
	assert.Equal(t, "75", env.remote.Cell(store.TableAdditives, 2, env.layout.AdditiveLevelCol))
}

func TestAdminChangeCode(t *testing.T) {
	env := newTestEnv(t, script(
		testAdminCode,
		"3",
		"4321",
		"4321",
		"5",
	), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))
	assert.Contains(t, env.out.String(), "Admin code updated")

	require.NotNil(t, env.repo.cred)
	assert.True(t, env.repo.cred.CheckCode("4321"))
	assert.False(t, env.repo.cred.CheckCode(testAdminCode))
}

func TestAdminChangeCodeRejectsMismatch(t *testing.T) {
	env := newTestEnv(t, script(
		testAdminCode,
		"3",
		"4321",
		"9999", // mismatch, reprompt
		"4321",
		"4321",
		"5",
	), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))
	assert.Contains(t, env.out.String(), "Codes do not match")
	assert.True(t, env.repo.cred.CheckCode("4321"))
}

func TestAdminShutdownChoice(t *testing.T) {
	env := newTestEnv(t, script(testAdminCode, "4"), time.Second)

	err := env.admin.Run(context.Background())
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestAdminRestockCancel(t *testing.T) {
	env := newTestEnv(t, script(testAdminCode, "1", "x", "5"), time.Second)

	require.NoError(t, env.admin.Run(context.Background()))
	latte, _ := env.cache.Coffee("Latte")
	assert.Equal(t, 5, latte.Stock)
}
