// internal/capture/poller.go
package capture

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
)

// Pollable is anything that can run a capture cycle.
type Pollable interface {
	PollAndAnnotate(ctx context.Context) (schemas.PollResult, error)
}

// Poller drives capture cycles on a fixed interval, taking the place of a frontend
// timer calling the capture endpoint.
type Poller struct {
	target   Pollable
	interval time.Duration
	logger   *zap.Logger
	// OnCycle, if set, observes every cycle's outcome.
	OnCycle func(schemas.PollResult, error)
}

// NewPoller creates a Poller.
func NewPoller(target Pollable, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		target:   target,
		interval: interval,
		logger:   logger.Named("poller"),
	}
}

// Run polls until ctx is done. An idle session is not an error; the poller keeps
// ticking so a later session gets picked up.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Capture poller started.", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Capture poller stopped.")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	res, err := p.target.PollAndAnnotate(ctx)
	switch {
	case errors.Is(err, schemas.ErrNoActiveSession):
		p.logger.Debug("No active session; skipping capture cycle.")
	case err != nil && ctx.Err() == nil:
		p.logger.Warn("Capture cycle failed.", zap.Error(err))
	case err == nil && res.NewEntries > 0:
		p.logger.Info("Captured new navigation entries.",
			zap.Int("new_entries", res.NewEntries),
			zap.Int("total_entries", res.TotalEntries))
	}
	if p.OnCycle != nil {
		p.OnCycle(res, err)
	}
}
