// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/sage/internal/health"
	"github.com/ManuGH/sage/internal/log"
)

// ReadinessWatch returns a task that polls readiness and logs transitions.
func ReadinessWatch(hm *health.Manager, interval time.Duration, logger zerolog.Logger) Task {
	return Task{
		Name: "readiness_watch",
		Run: func(ctx context.Context) error {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			last := health.StatusHealthy
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}

				resp := hm.Ready(ctx)
				if resp.Status == last {
					continue
				}
				evt := logger.Info()
				if resp.Status != health.StatusHealthy {
					evt = logger.Warn()
				}
				for name, res := range resp.Checks {
					if res.Status != health.StatusHealthy {
						evt = evt.Str("check_"+name, res.Error+res.Message)
					}
				}
				evt.
					Str(log.FieldEvent, "readiness.changed").
					Str("from", string(last)).
					Str("to", string(resp.Status)).
					Msg("readiness changed")
				last = resp.Status
			}
		},
	}
}
