// Package housekeeping returns beds that have finished turnover cleaning
// to service on a cron schedule.
package housekeeping

import (
	"context"
	"fmt"
	"time"

	"github.com/jmendes/bedboard/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultTurnover is how long a bed stays in Cleaning before the sweep
// returns it to Available.
const DefaultTurnover = 30 * time.Minute

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Sweeper abstracts the registry sweep call for testability.
type Sweeper interface {
	SweepCleaning(window time.Duration) []models.Bed
}

// Scheduler runs the cleaning sweep whenever its cron schedule fires.
type Scheduler struct {
	sweeper  Sweeper
	schedule cron.Schedule
	turnover time.Duration
	log      *zap.Logger
}

// Opts holds parameters for creating a Scheduler.
type Opts struct {
	Sweeper  Sweeper
	Schedule string        // 5-field cron expression, e.g. "*/5 * * * *"
	Turnover time.Duration // defaults to DefaultTurnover
	Log      *zap.Logger
}

// New creates a Scheduler.
func New(opts Opts) (*Scheduler, error) {
	if opts.Sweeper == nil {
		return nil, fmt.Errorf("housekeeping: sweeper is required")
	}
	sched, err := cronParser.Parse(opts.Schedule)
	if err != nil {
		return nil, fmt.Errorf("housekeeping: parse schedule %q: %w", opts.Schedule, err)
	}
	turnover := opts.Turnover
	if turnover <= 0 {
		turnover = DefaultTurnover
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		sweeper:  opts.Sweeper,
		schedule: sched,
		turnover: turnover,
		log:      log,
	}, nil
}

// Sweep runs one sweep cycle and returns the beds put back in service.
func (s *Scheduler) Sweep() []models.Bed {
	flipped := s.sweeper.SweepCleaning(s.turnover)
	for _, b := range flipped {
		s.log.Info("bed returned to service",
			zap.String("bed", b.ID),
			zap.String("ward", b.Ward),
		)
	}
	return flipped
}

// Run sweeps on the cron schedule until ctx is cancelled. Call it from
// its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Sweep()
		}
	}
}
