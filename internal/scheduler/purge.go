// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run. It either does the work inline or enqueues it.
type Job func(ctx context.Context) error

// PurgeScheduler triggers the revoked-token purge on a cron schedule.
type PurgeScheduler struct {
	schedule string
	job      Job

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	isPurging  bool
	cancelFunc context.CancelFunc
	ctx        context.Context
}

func NewPurgeScheduler(schedule string, job Job) *PurgeScheduler {
	return &PurgeScheduler{
		schedule: schedule,
		job:      job,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start validates the schedule and starts the cron loop. An empty schedule
// disables the scheduler. Cancelling ctx stops it.
func (s *PurgeScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.schedule == "" {
		log.Printf("Token purge scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runPurge); err != nil {
		return fmt.Errorf("failed to schedule purge job: %w", err)
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)
	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("Token purge scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule, CronDescription(s.schedule), nextRun)

	go func(done <-chan struct{}) {
		<-done
		s.Stop()
	}(s.ctx.Done())

	return nil
}

// Stop waits for a running job to finish. Safe to call more than once.
func (s *PurgeScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	cancel()

	log.Printf("Token purge scheduler: stopped")
}

// RunNow triggers the job immediately, outside the schedule.
func (s *PurgeScheduler) RunNow(ctx context.Context) error {
	if !s.begin() {
		return nil
	}
	defer s.end()
	return s.job(ctx)
}

func (s *PurgeScheduler) runPurge() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.RunNow(ctx); err != nil {
		log.Printf("Token purge scheduler: job failed: %v", err)
	}
}

// begin marks a run in progress; overlapping runs are skipped.
func (s *PurgeScheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isPurging {
		log.Printf("Token purge scheduler: previous run still in progress, skipping")
		return false
	}
	s.isPurging = true
	return true
}

func (s *PurgeScheduler) end() {
	s.mu.Lock()
	s.isPurging = false
	s.mu.Unlock()
}

func (s *PurgeScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
