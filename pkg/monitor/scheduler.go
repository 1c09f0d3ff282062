package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/wallet-hunter/pkg/config"
)

var scheduledRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "hunter_scheduled_tracking_runs_total",
	Help: "Scheduled tracking runs by outcome (ok, error)",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(scheduledRuns)
}

// TrackFunc runs one tracking pass over activity since the given time.
type TrackFunc func(ctx context.Context, since time.Time) error

// Scheduler re-runs tracking on a cron schedule. Each tick looks back one
// tracking window from the moment it fires.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	window   time.Duration
	run      TrackFunc
	now      func() time.Time
}

func NewScheduler(cfg *config.Config, run TrackFunc) (*Scheduler, error) {
	sched, err := cron.ParseStandard(cfg.TrackSchedule)
	if err != nil {
		return nil, fmt.Errorf("parse TRACK_SCHEDULE %q: %w", cfg.TrackSchedule, err)
	}
	window := cfg.TrackWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &Scheduler{
		spec:     cfg.TrackSchedule,
		schedule: sched,
		window:   window,
		run:      run,
		now:      time.Now,
	}, nil
}

// Next is when the schedule fires next after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks until ctx is cancelled. A tick that fires while the previous one
// is still running is skipped.
func (s *Scheduler) Run(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.tick(ctx) }))
	c.Start()

	log.Info().Str("schedule", s.spec).Time("next", s.Next(s.now())).Msg("⏰ tracking scheduler started")
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	since := s.now().Add(-s.window)
	log.Info().Time("since", since).Msg("scheduled tracking run")
	if err := s.run(ctx, since); err != nil {
		scheduledRuns.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("scheduled tracking run failed")
		return
	}
	scheduledRuns.WithLabelValues("ok").Inc()
}

// cronLogger routes cron's internal logging into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
