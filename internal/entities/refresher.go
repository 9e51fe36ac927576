package entities

import (
	"context"
	"sync/atomic"
	"time"

	cerrors "dealsense/internal/common/errors"
	"dealsense/internal/common/logger"
	"dealsense/internal/common/metrics"
)

// Refresher keeps an immutable registry snapshot current. Classification
// reads one snapshot for its whole call; refreshes swap the pointer
// atomically so no locking is needed on the read path.
type Refresher struct {
	source   Source
	interval time.Duration
	logger   logger.Logger
	current  atomic.Pointer[Snapshot]
}

func NewRefresher(source Source, interval time.Duration, log logger.Logger) *Refresher {
	r := &Refresher{
		source:   source,
		interval: interval,
		logger:   log.WithFields(map[string]interface{}{"component": "entities.refresher"}),
	}
	r.current.Store(NewSnapshot(nil))
	return r
}

// Current returns the latest snapshot. Never nil.
func (r *Refresher) Current() *Snapshot {
	return r.current.Load()
}

// Refresh loads the company list once and publishes a new snapshot.
// A failed load keeps the previous snapshot in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	companies, err := r.source.LookupCompanies(ctx)
	if err != nil {
		serr := cerrors.NewEntityRegistryUnavailableError(err)
		r.logger.Error("entity refresh failed, keeping previous snapshot", map[string]interface{}{
			"error":     err.Error(),
			"code":      string(cerrors.CodeOf(serr)),
			"retryable": cerrors.IsRetryable(serr),
		})
		return serr
	}

	snap := NewSnapshot(companies)
	r.current.Store(snap)
	metrics.EntitySnapshotSize.Set(float64(len(snap.Companies)))

	r.logger.Info("entity snapshot refreshed", map[string]interface{}{
		"companies": len(snap.Companies),
	})
	return nil
}

// Start refreshes immediately, then on the configured interval until ctx is
// cancelled.
func (r *Refresher) Start(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("initial entity refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = r.Refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}
