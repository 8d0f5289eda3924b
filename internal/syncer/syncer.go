package syncer

import (
	"context"
	"time"

	"go-kopi-machine/internal/cache"
	"go-kopi-machine/internal/store"

	"github.com/rs/zerolog"
)

// Synchronizer reconciles the local cache with the remote store: each cycle
// it drains the mutation queue into the cache, then pushes the full cache
// snapshot for every mutable table. Remote failures are logged and retried
// implicitly on the next tick; the loop itself never terminates on error.
type Synchronizer struct {
	cache    *cache.Cache
	queue    *cache.Queue
	remote   store.Store
	layout   cache.Layout
	interval time.Duration
	log      zerolog.Logger
}

func New(c *cache.Cache, q *cache.Queue, remote store.Store, layout cache.Layout, interval time.Duration, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		cache:    c,
		queue:    q,
		remote:   remote,
		layout:   layout,
		interval: interval,
		log:      log.With().Str("component", "syncer").Logger(),
	}
}

// Run loops until ctx is canceled, flushing once more on the way out so a
// graceful shutdown does not lose queued mutations.
func (s *Synchronizer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.FlushNow(ctx)
		case <-ctx.Done():
			s.FlushNow(context.Background())
			return
		}
	}
}

// FlushNow performs one synchronization cycle: drain, apply, push. Also
// invoked directly for graceful shutdown.
func (s *Synchronizer) FlushNow(ctx context.Context) {
	drained := s.queue.DrainAll()
	for _, m := range drained {
		s.cache.Apply(m)
	}
	if len(drained) > 0 {
		s.log.Debug().Int("applied", len(drained)).Msg("queued mutations applied")
	}

	// Snapshot under the cache lock, push with it released.
	snap := s.cache.Snapshot()
	if err := s.push(ctx, snap); err != nil {
		s.log.Warn().Err(err).Msg("remote push failed, retrying next cycle")
		return
	}
	s.cache.MarkSalesPushed(snap)
}

func (s *Synchronizer) push(ctx context.Context, snap cache.Snapshot) error {
	for _, cell := range snap.CoffeeStock {
		if err := s.remote.WriteCell(ctx, store.TableCoffee, cell.Row, s.layout.CoffeeStockCol, cell.Value); err != nil {
			return err
		}
	}
	for _, cell := range snap.AdditiveLevels {
		if err := s.remote.WriteCell(ctx, store.TableAdditives, cell.Row, s.layout.AdditiveLevelCol, cell.Value); err != nil {
			return err
		}
	}
	for _, cell := range snap.RefStatuses {
		if err := s.remote.WriteCell(ctx, store.TableReferences, cell.Row, s.layout.RefStatusCol, cell.Value); err != nil {
			return err
		}
	}
	for _, sale := range snap.PendingSales {
		if err := s.remote.AppendRow(ctx, store.TableSales, sale.Values()); err != nil {
			return err
		}
	}
	return nil
}
