package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"weekly-route-service/internal/logger"
)

// Validate checks a standard five-field cron expression.
func Validate(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return nil
}

// Scheduler owns a single recurring trigger. Arm replaces any previous
// trigger before starting the new one, so at most one fire loop is ever
// alive regardless of how schedule updates interleave.
type Scheduler struct {
	log logger.Logger
	run func(context.Context)
	now func() time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func New(run func(context.Context), log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{log: log, run: run, now: time.Now}
}

// Arm parses expr and starts the trigger loop for it. The previously
// armed trigger, if any, is fully stopped first.
func (s *Scheduler) Arm(expr string) error {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	s.armSchedule(schedule)
	s.log.Infof("scheduler: armed expression %q", expr)
	return nil
}

func (s *Scheduler) armSchedule(schedule cron.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	stop := make(chan struct{})
	done := make(chan struct{})
	s.stop = stop
	s.done = done

	go s.loop(schedule, s.run, stop, done)
}

// Disarm stops the current trigger and waits for its loop to exit. It is
// a no-op when nothing is armed.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop = nil
	s.done = nil
}

func (s *Scheduler) loop(schedule cron.Schedule, run func(context.Context), stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		next := schedule.Next(s.now())
		timer.Reset(time.Until(next))

		select {
		case <-stop:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			return
		case <-timer.C:
			s.log.Infof("scheduler: trigger fired, starting run")
			run(context.Background())
		}
	}
}
