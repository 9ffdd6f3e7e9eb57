package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweepable is a store that can drop expired entries in bulk.
type Sweepable interface {
	Sweep() int
	Len() int
}

// Sweeper periodically purges expired geocode cache entries so memory
// does not hold results nobody will read again.
type Sweeper struct {
	target   Sweepable
	interval time.Duration
	log      *zap.Logger
}

// NewSweeper creates a new sweeper.
func NewSweeper(target Sweepable, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{target: target, interval: interval, log: log}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("sweeper started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns the number of removed entries.
func (s *Sweeper) RunOnce() int {
	removed := s.target.Sweep()
	if removed > 0 {
		s.log.Debug("swept expired entries",
			zap.Int("removed", removed),
			zap.Int("remaining", s.target.Len()),
		)
	}
	return removed
}
