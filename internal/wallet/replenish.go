package wallet

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ssnowzx/Wallet-0201N/internal/models"
	"github.com/Ssnowzx/Wallet-0201N/internal/storage"
	"github.com/Ssnowzx/Wallet-0201N/internal/tangle"
)

const (
	// DefaultPoolTarget is the pending pool size replenishment restores.
	DefaultPoolTarget = 100

	// DefaultReplenishInterval is how often the pool is topped up.
	DefaultReplenishInterval = 5 * time.Minute

	// synthetic timestamps sit well ahead of wall clock so recency ordering
	// of real traffic is not disturbed
	syntheticTimestampOffset = 1_000_000

	maxSyntheticAmount = 10
)

// Replenisher keeps the pending pool populated by injecting synthetic
// transactions whenever the pending count drops below target. Each synthetic
// transaction runs tip selection against the pool as it stands at that point
// in the batch, so synthetics created in one cycle can validate each other.
type Replenisher struct {
	store    *storage.Store
	selector tangle.Selector
	target   int
	logger   zerolog.Logger
}

func NewReplenisher(store *storage.Store, selector tangle.Selector, target int, logger zerolog.Logger) *Replenisher {
	if target <= 0 {
		target = DefaultPoolTarget
	}
	return &Replenisher{store: store, selector: selector, target: target, logger: logger}
}

// Run replenishes on a fixed schedule until ctx is cancelled. Tick failures
// are logged and retried on the next tick, never propagated.
func (r *Replenisher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReplenishInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Replenisher stopped")
			return
		case <-ticker.C:
			if _, err := r.ReplenishOnce(ctx); err != nil {
				r.logger.Error().Err(err).Msg("Replenish cycle failed")
			}
		}
	}
}

// ReplenishOnce tops the pending pool up to target and returns how many
// synthetic transactions it created. If the pool is already at or above
// target it creates nothing and issues no commit.
func (r *Replenisher) ReplenishOnce(ctx context.Context) (int, error) {
	all, err := r.store.Transactions()
	if err != nil {
		return 0, err
	}
	pool := tangle.Pending(all)
	need := r.target - len(pool)
	if need <= 0 {
		r.logger.Debug().Int("pending", len(pool)).Int("target", r.target).Msg("Pool at target, nothing to do")
		return 0, nil
	}
	r.logger.Info().Int("pending", len(pool)).Int("creating", need).Msg("Replenishing pending pool")

	base := time.Now().UnixMilli() + syntheticTimestampOffset
	ops := make([]storage.Op, 0, need*3)
	for i := 0; i < need; i++ {
		tips := r.selector.SelectTips(pool)
		ts := base + int64(i)
		tx := models.Transaction{
			ID:          uuid.NewString(),
			From:        NewSyntheticAddress(),
			To:          NewSyntheticAddress(),
			Amount:      int64(rand.Intn(maxSyntheticAmount) + 1),
			Timestamp:   ts,
			Validates:   tips,
			ValidatedBy: []string{},
		}
		tx.Hash = models.SimulatedHash(tx.ID, ts)

		ops = append(ops, storage.InsertTransaction(tx))
		for _, tipID := range tips {
			ops = append(ops, storage.AppendValidatedBy(tipID, tx.ID))
		}

		// keep the in-memory pool consistent with the batch so far:
		// validated tips accrue references and drop out once confirmed
		for j := range pool {
			for _, tipID := range tips {
				if pool[j].ID == tipID {
					pool[j].ValidatedBy = append(pool[j].ValidatedBy, tx.ID)
				}
			}
		}
		pool = append(pool, tx)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := r.store.Commit(ops); err != nil {
		return 0, err
	}
	r.logger.Info().Int("created", need).Msg("Replenish cycle committed")
	return need, nil
}
