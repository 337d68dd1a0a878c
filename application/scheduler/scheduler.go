package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one scheduled run
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron expressions. A run that is still going when
// its next tick fires makes that tick a no-op.
type Scheduler struct {
	cron   *cron.Cron
	logger logrus.FieldLogger
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a scheduler accepting standard five-field expressions and
// descriptors such as @hourly or @every 6h
func New(logger logrus.FieldLogger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	cl := cronLogger{logger}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job under spec
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		logger := s.logger.WithField("job", name)
		logger.Info("Scheduled run started")
		if err := job(s.ctx); err != nil {
			logger.WithError(err).Error("Scheduled run failed")
			return
		}
		logger.Info("Scheduled run finished")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Run blocks until ctx is done, then waits for running jobs to return
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.WithField("next", entry.Next).Info("Scheduler started")
	}
	<-ctx.Done()
	s.cancel()
	<-s.cron.Stop().Done()
	return nil
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	logger logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	out := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
