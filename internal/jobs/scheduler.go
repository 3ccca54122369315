package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"smartreads/internal/config"
	"smartreads/internal/queue"
)

type Scheduler struct {
	cron       *cron.Cron
	dispatcher queue.Dispatcher
	cfg        config.JobsConfig
	log        zerolog.Logger
	now        func() time.Time
}

func NewScheduler(dispatcher queue.Dispatcher, cfg config.JobsConfig, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:       c,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Start registers the configured specs. An empty spec disables that job.
func (s *Scheduler) Start() error {
	if s.cfg.SnapshotSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.SnapshotSpec, func() { s.enqueue(queue.TaskSnapshot) }); err != nil {
			return err
		}
	}
	if s.cfg.SweepSpec != "" {
		if _, err := s.cron.AddFunc(s.cfg.SweepSpec, func() { s.enqueue(queue.TaskSweep) }); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler jobs still running at shutdown")
	}
}

func (s *Scheduler) enqueue(taskType string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.dispatcher.Dispatch(ctx, queue.Task{Type: taskType, EnqueuedAt: s.now()}); err != nil {
		s.log.Error().Err(err).Str("type", taskType).Msg("enqueue task failed")
	}
}
