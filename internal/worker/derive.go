// Package worker runs the scheduled background jobs: currently the
// learning derive cycle that mines recommendation outcomes into new
// pending learnings.
package worker

import (
	"context"
	"time"

	"github.com/ignite/adpilot/internal/export"
	"github.com/ignite/adpilot/internal/learning"
	"github.com/ignite/adpilot/internal/pkg/distlock"
	"github.com/ignite/adpilot/internal/pkg/logger"
)

// AccountSource lists the accounts worth mining.
type AccountSource interface {
	ActiveAccountIDs(ctx context.Context) ([]string, error)
}

// DeriveWorker periodically derives learnings from outcomes for every
// active account. A distributed lock keeps the cycle a singleton across
// instances; the exporter is optional.
type DeriveWorker struct {
	store    *learning.Store
	accounts AccountSource
	lock     distlock.DistLock
	exporter *export.Exporter
	interval time.Duration
}

// NewDeriveWorker creates the derive worker.
func NewDeriveWorker(store *learning.Store, accounts AccountSource, lock distlock.DistLock, exporter *export.Exporter, interval time.Duration) *DeriveWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &DeriveWorker{
		store:    store,
		accounts: accounts,
		lock:     lock,
		exporter: exporter,
		interval: interval,
	}
}

// Start runs the derive loop until ctx is cancelled.
func (w *DeriveWorker) Start(ctx context.Context) {
	logger.Info("derive worker started", "interval", w.interval.String())
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("derive worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *DeriveWorker) runOnce(ctx context.Context) {
	if w.lock != nil {
		acquired, err := w.lock.Acquire(ctx)
		if err != nil {
			logger.Warn("derive lock acquire failed", "error", err.Error())
			return
		}
		if !acquired {
			logger.Debug("derive cycle held elsewhere, skipping")
			return
		}
		defer w.lock.Release(ctx)
	}

	accounts, err := w.accounts.ActiveAccountIDs(ctx)
	if err != nil {
		logger.Error("derive account listing failed", "error", err.Error())
		return
	}

	for _, accountID := range accounts {
		created, err := w.store.DeriveFromOutcomes(ctx, accountID)
		if err != nil {
			logger.Error("derive cycle failed", "account", accountID, "error", err.Error())
			continue
		}
		if len(created) == 0 {
			continue
		}
		logger.Info("derive cycle produced learnings", "account", accountID, "count", len(created))
		if w.exporter != nil {
			report := export.DeriveReport{
				AccountID:    accountID,
				RanAt:        time.Now().UTC(),
				NewLearnings: created,
			}
			if err := w.exporter.WriteDeriveReport(ctx, report); err != nil {
				logger.Warn("derive report export failed", "account", accountID, "error", err.Error())
			}
		}
	}
}
