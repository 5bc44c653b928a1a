package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Reaper closes sessions that have been idle since before.
type Reaper interface {
	EvictIdle(ctx context.Context, before time.Time) int
}

// Worker periodically evicts idle editor sessions.
type Worker struct {
	reaper   Reaper
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func New(reaper Reaper, ttl, interval time.Duration, logger *zap.Logger) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		reaper:   reaper,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start sweeps every interval. It blocks until ctx is cancelled.
// A non-positive ttl disables eviction.
func (w *Worker) Start(ctx context.Context) {
	if w.ttl <= 0 {
		w.logger.Info("session eviction disabled")
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	n := w.reaper.EvictIdle(ctx, w.now().Add(-w.ttl))
	if n > 0 {
		w.logger.Debug("worker: sweep", zap.Int("evicted", n))
	}
}
