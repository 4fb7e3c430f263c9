package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"StockScope/internal/session"
)

// Scheduler manages housekeeping cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Sessions *session.Store
	MaxIdle  time.Duration

	log logrus.FieldLogger
}

// NewScheduler creates a new Scheduler. Cron specs include a seconds field.
func NewScheduler(sessions *session.Store, maxIdle time.Duration, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Sessions: sessions,
		MaxIdle:  maxIdle,
		log:      log,
	}
}

// RegisterSweep schedules the idle-session sweep.
func (s *Scheduler) RegisterSweep(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.sweepTask); err != nil {
		return fmt.Errorf("register session sweep: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunSweepNow executes the sweep immediately and returns the number of sessions removed.
func (s *Scheduler) RunSweepNow() int {
	return s.Sessions.Sweep(s.MaxIdle)
}

func (s *Scheduler) sweepTask() {
	removed := s.RunSweepNow()
	s.log.WithFields(logrus.Fields{
		"removed": removed,
		"live":    s.Sessions.Len(),
	}).Debug("session sweep finished")
}
