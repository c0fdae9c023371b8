// Package scheduler runs the periodic catalog maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/tasks"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := scheduleParser.Parse(schedule)
	return err
}

// NextRun returns when schedule fires next after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := scheduleParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// Enqueuer hands sweep work to the task queue.
type Enqueuer interface {
	EnqueueIntegrity(repair bool, actor string) (string, error)
	EnqueueAuditPrune(retentionDays int) (string, error)
}

// SweepConfig configures IntegritySweep.
type SweepConfig struct {
	Schedule           string
	Repair             bool
	AuditRetentionDays int // 0 skips audit pruning
}

// IntegritySweep periodically queues an integrity check of the catalog and
// a prune of old audit events.
type IntegritySweep struct {
	enqueuer Enqueuer
	cfg      SweepConfig

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

func NewIntegritySweep(enqueuer Enqueuer, cfg SweepConfig) *IntegritySweep {
	return &IntegritySweep{
		enqueuer: enqueuer,
		cfg:      cfg,
		cron:     cron.New(cron.WithParser(scheduleParser)),
	}
}

// Start schedules the sweep. It stops by itself when ctx is cancelled.
func (s *IntegritySweep) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if err := ValidateSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, s.RunNow)
	if err != nil {
		return fmt.Errorf("failed to schedule integrity sweep: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	next, _ := NextRun(s.cfg.Schedule, time.Now())
	log.Info().
		Str("schedule", s.cfg.Schedule).
		Bool("repair", s.cfg.Repair).
		Time("next_run", next).
		Msg("integrity sweep scheduled")

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running sweep to finish and removes the schedule.
func (s *IntegritySweep) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false
	log.Info().Msg("integrity sweep stopped")
}

func (s *IntegritySweep) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the sweep fires next, or nil when stopped.
func (s *IntegritySweep) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	next := s.cron.Entry(s.entryID).Next
	return &next
}

// RunNow queues one sweep immediately.
func (s *IntegritySweep) RunNow() {
	id, err := s.enqueuer.EnqueueIntegrity(s.cfg.Repair, tasks.SweepActor)
	if err != nil {
		log.Error().Err(err).Msg("integrity sweep: failed to enqueue check")
	} else {
		log.Info().Str("task_id", id).Msg("integrity sweep: check enqueued")
	}

	if s.cfg.AuditRetentionDays <= 0 {
		return
	}
	if _, err := s.enqueuer.EnqueueAuditPrune(s.cfg.AuditRetentionDays); err != nil {
		log.Error().Err(err).Msg("integrity sweep: failed to enqueue audit prune")
	}
}
