package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/alexivanou/gans/internal/model"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Runner runs one collection batch
type Runner interface {
	Run(ctx context.Context, names []string) model.RunReport
}

// Scheduler periodically on-boards and refreshes the configured cities.
// Runs never overlap; a tick that fires while a run is in progress is skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	cities    []string
	schedule  string
	logger    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	job    *gocron.Job

	// running is held for the whole of a batch
	running sync.Mutex
}

// New creates a new Scheduler for a standard 5 field cron schedule
func New(schedule string, cities []string, runner Runner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		runner:    runner,
		cities:    cities,
		schedule:  schedule,
		logger:    logger,
	}
}

// RunNow runs a batch synchronously, waiting for a batch in progress to
// finish first
func (s *Scheduler) RunNow(ctx context.Context) model.RunReport {
	s.running.Lock()
	defer s.running.Unlock()
	return s.runner.Run(ctx, s.cities)
}

// tryRun runs a batch unless one is already in progress
func (s *Scheduler) tryRun(ctx context.Context) (model.RunReport, bool) {
	if !s.running.TryLock() {
		return model.RunReport{}, false
	}
	defer s.running.Unlock()
	return s.runner.Run(ctx, s.cities), true
}

// Start schedules the batch and starts the underlying scheduler. Runs started
// by the scheduler are cancelled when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.cities) == 0 {
		s.logger.Warn("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)

	job, err := s.scheduler.Cron(s.schedule).SingletonMode().Do(func() {
		s.logger.Info("scheduler: running collection job")
		report, ok := s.tryRun(ctx)
		if !ok {
			s.logger.Warn("scheduler: previous run still in progress, skipping tick",
				zap.Time("next_run", s.NextRun()),
			)
			return
		}
		s.logger.Info("scheduler: completed collection job",
			zap.String("run_id", report.RunID),
			zap.Int("failed", report.Failed()),
			zap.Time("next_run", s.NextRun()),
		)
	})
	if err != nil {
		cancel()
		return err
	}

	s.mu.Lock()
	s.cancel = cancel
	s.job = job
	s.mu.Unlock()

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started",
		zap.String("schedule", s.schedule),
		zap.Strings("cities", s.cities),
		zap.Time("next_run", s.NextRun()),
	)
	return nil
}

// NextRun returns when the batch runs next, zero if it is not scheduled
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// Stop stops the scheduler and cancels a run in progress
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
