// internal/scheduler/noshow.go
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/campusbook/campusbook/internal/booking"
)

const noShowSweepTimeout = 30 * time.Second

// RegisterNoShowSweep schedules the job that cancels approved reservations
// whose booked window ended without a check-in.
func (s *Service) RegisterNoShowSweep(engine *booking.Engine, cronExpr string) error {
	_, err := s.AddJob("no_show_sweep", cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), noShowSweepTimeout)
		defer cancel()

		swept, err := engine.SweepNoShows(ctx)
		if err != nil {
			log.Error().Err(err).Msg("No-show sweep failed")
			return
		}
		if swept > 0 {
			log.Info().Int("swept", swept).Msg("No-show reservations cancelled")
		}
	})
	return err
}
