package manager

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/model"
	"go-kopi-machine/internal/store"
)

// waitForRefID polls the remote reference table for the ID the payment
// manager generated, empty if none appears in time.
func waitForRefID(env *testEnv) string {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if refID := env.remote.Cell(store.TableReferences, 2, 1); refID != "" {
			return refID
		}
		time.Sleep(5 * time.Millisecond)
	}
	return ""
}

func TestQRISPaymentConfirmed(t *testing.T) {
	env := newTestEnv(t, script("2"), 2*time.Second)

	// Confirm from the side, the way the web page does.
	go func() {
		refID := waitForRefID(env)
		env.cache.SetReferenceStatus(refID, model.RefCompleted)
	}()

	paid, method, err := env.payment.ProcessPayment(context.Background(), 20000)
	require.NoError(t, err)
	assert.True(t, paid)
	assert.Equal(t, model.MethodQRIS, method)
	assert.Contains(t, env.out.String(), "Payment confirmed")

	refID := env.remote.Cell(store.TableReferences, 2, 1)
	ref, ok := env.cache.Reference(refID)
	require.True(t, ok)
	assert.Equal(t, model.RefCompleted, ref.Status)
}

func TestQRISPaymentExpires(t *testing.T) {
	env := newTestEnv(t, script("2"), 50*time.Millisecond)

	paid, method, err := env.payment.ProcessPayment(context.Background(), 20000)
	require.NoError(t, err)
	assert.False(t, paid)
	assert.Equal(t, model.MethodQRIS, method)
	assert.Contains(t, env.out.String(), "Payment expired")

	refID := env.remote.Cell(store.TableReferences, 2, 1)
	require.NotEmpty(t, refID)
	ref, ok := env.cache.Reference(refID)
	require.True(t, ok)
	assert.Equal(t, model.RefExpired, ref.Status)

	// Expiry is queued so the remote status cell catches up next cycle.
	drained := env.queue.DrainAll()
	require.Len(t, drained, 1)
	intent, ok := drained[0].(cache.SetReferenceStatus)
	require.True(t, ok)
	assert.Equal(t, refID, intent.RefID)
	assert.Equal(t, model.RefExpired, intent.Status)
}

func TestQRISConfirmationBeatsExpiredTimer(t *testing.T) {
	env := newTestEnv(t, script("2"), 50*time.Millisecond)

	// Complete the reference the instant it exists; even if the timer
	// fires first in the select, the expiry write must lose.
	completed := make(chan struct{})
	go func() {
		refID := waitForRefID(env)
		env.cache.SetReferenceStatus(refID, model.RefCompleted)
		close(completed)
	}()

	paid, _, err := env.payment.ProcessPayment(context.Background(), 20000)
	require.NoError(t, err)
	<-completed

	refID := env.remote.Cell(store.TableReferences, 2, 1)
	ref, _ := env.cache.Reference(refID)
	assert.Equal(t, model.RefCompleted, ref.Status)
	assert.True(t, paid)
}

// appendFailStore rejects every append, simulating a rate-limited remote.
type appendFailStore struct {
	store.Store
}

func (appendFailStore) AppendRow(ctx context.Context, table string, values []string) error {
	return errors.New("remote unavailable")
}

func TestQRISReferenceRowSurvivesRemoteFailure(t *testing.T) {
	env := newTestEnv(t, script("2"), 20*time.Millisecond)
	payment := NewPaymentManager(env.cache, env.queue, env.prompt, appendFailStore{env.remote}, nil,
		zerolog.New(io.Discard), 20*time.Millisecond, "http://127.0.0.1:5000")

	// The reference row never reaches the remote table, but the payment
	// still runs its course locally instead of crashing the session.
	paid, _, err := payment.ProcessPayment(context.Background(), 20000)
	require.NoError(t, err)
	assert.False(t, paid)
	assert.Contains(t, env.out.String(), "Payment expired")
}

func TestCashExactAmountNoChange(t *testing.T) {
	env := newTestEnv(t, script("1", "20000"), time.Second)

	paid, method, err := env.payment.ProcessPayment(context.Background(), 20000)
	require.NoError(t, err)
	assert.True(t, paid)
	assert.Equal(t, model.MethodCash, method)
	assert.NotContains(t, env.out.String(), "Your change")
}

func TestCashAccumulatesAcrossInserts(t *testing.T) {
	env := newTestEnv(t, script("1", "10000", "5000", "10000"), time.Second)

	paid, _, err := env.payment.ProcessPayment(context.Background(), 22000)
	require.NoError(t, err)
	assert.True(t, paid)
	assert.Contains(t, env.out.String(), "Your change: Rp3000")
}
