package searchindex

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mellihq/melli-ads/internal/health"
)

// HealthChecker monitors the external engine using an optional HealthPinger
// implemented by the concrete index. The index is non-authoritative, so a
// failing probe degrades search to the fallback path instead of taking the
// service down; callers decide how to aggregate this checker.
type HealthChecker struct {
	index        Index
	healthy      atomic.Int32
	log          zerolog.Logger
	probeTimeout time.Duration
}

// NewHealthChecker creates a new search index health checker.
func NewHealthChecker(index Index, log zerolog.Logger, probeTimeout time.Duration) *HealthChecker {
	hc := &HealthChecker{index: index, log: log, probeTimeout: probeTimeout}
	hc.healthy.Store(0) // start unhealthy until first successful probe
	return hc
}

func (hc *HealthChecker) Name() string    { return "searchindex" }
func (hc *HealthChecker) IsHealthy() bool { return hc.healthy.Load() == 1 }

func (hc *HealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	run := func() {
		to := hc.probeTimeout
		if to <= 0 {
			to = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, to)
		defer cancel()

		ok := true
		if p, okCast := hc.index.(health.HealthPinger); okCast {
			if err := p.HealthPing(checkCtx); err != nil {
				ok = false
				hc.log.Warn().Str("checker", hc.Name()).Err(err).Msg("search index health check failed")
			}
		} else if _, err := hc.index.Stats(checkCtx); err != nil {
			ok = false
			hc.log.Warn().Str("checker", hc.Name()).Err(err).Msg("search index health check failed")
		}
		if ok {
			hc.healthy.Store(1)
		} else {
			hc.healthy.Store(0)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}
