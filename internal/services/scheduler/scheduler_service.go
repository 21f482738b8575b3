package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
)

// jobEntry represents a registered job with metadata
type jobEntry struct {
	name        string
	schedule    string
	description string
	handler     interfaces.JobHandler
	enabled     bool
	cronID      cron.EntryID
	lastRun     *time.Time
	isRunning   bool
	lastError   string
}

// Service implements SchedulerService
type Service struct {
	cron    *cron.Cron
	clock   clockwork.Clock
	logger  arbor.ILogger
	jobMu   sync.Mutex // Protects jobs, running and stopped
	jobs    map[string]*jobEntry
	running bool
	stopped bool // set by Stop; no run starts afterwards
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cron:   cron.New(),
		clock:  clock,
		logger: logger,
		jobs:   make(map[string]*jobEntry),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins firing registered jobs on their schedules
func (s *Service) Start() error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the cron, cancels in-flight jobs and waits for them to return
func (s *Service) Stop() error {
	s.jobMu.Lock()
	s.stopped = true
	if !s.running {
		s.jobMu.Unlock()
		s.cancel()
		s.wg.Wait()
		return nil
	}
	s.running = false
	s.jobMu.Unlock()

	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning returns true if scheduler is active
func (s *Service) IsRunning() bool {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.running
}

func (s *Service) RegisterJob(name, schedule, description string, handler interfaces.JobHandler) error {
	if err := common.ValidateSchedule(schedule); err != nil {
		return fmt.Errorf("invalid schedule for job %s: %w", name, err)
	}

	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	cronID, err := s.cron.AddFunc(schedule, func() { s.executeJob(name) })
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	s.jobs[name] = &jobEntry{
		name:        name,
		schedule:    schedule,
		description: description,
		handler:     handler,
		enabled:     true,
		cronID:      cronID,
	}

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

func (s *Service) EnableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	if entry.enabled {
		return nil
	}

	cronID, err := s.cron.AddFunc(entry.schedule, func() { s.executeJob(name) })
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}
	entry.cronID = cronID
	entry.enabled = true

	s.logger.Info().Str("job_name", name).Msg("Job enabled")
	return nil
}

func (s *Service) DisableJob(name string) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %s not found", name)
	}
	if !entry.enabled {
		return nil
	}

	s.cron.Remove(entry.cronID)
	entry.enabled = false

	s.logger.Info().Str("job_name", name).Msg("Job disabled")
	return nil
}

func (s *Service) TriggerJob(name string) error {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		return fmt.Errorf("job %s not found", name)
	}
	if entry.isRunning {
		s.jobMu.Unlock()
		return fmt.Errorf("job %s is already running", name)
	}
	if s.stopped {
		s.jobMu.Unlock()
		return fmt.Errorf("scheduler stopped")
	}
	s.jobMu.Unlock()

	s.logger.Info().Str("job_name", name).Msg("Manually triggering job execution")
	common.SafeGo(s.logger, "job:"+name, func() { s.executeJob(name) })
	return nil
}

func (s *Service) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	entry, exists := s.jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %s not found", name)
	}

	var nextRun *time.Time
	if entry.enabled && s.running {
		if next := s.cron.Entry(entry.cronID).Next; !next.IsZero() {
			nextRun = &next
		}
	}

	return &interfaces.JobStatus{
		Name:        entry.name,
		Enabled:     entry.enabled,
		Schedule:    entry.schedule,
		Description: entry.description,
		LastRun:     entry.lastRun,
		NextRun:     nextRun,
		IsRunning:   entry.isRunning,
		LastError:   entry.lastError,
	}, nil
}

func (s *Service) GetAllJobStatuses() map[string]*interfaces.JobStatus {
	s.jobMu.Lock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.jobMu.Unlock()

	statuses := make(map[string]*interfaces.JobStatus, len(names))
	for _, name := range names {
		if status, err := s.GetJobStatus(name); err == nil {
			statuses[name] = status
		}
	}
	return statuses
}

// executeJob runs one job unless its previous run is still in flight
func (s *Service) executeJob(name string) {
	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		s.logger.Warn().Str("job_name", name).Msg("Job not found")
		return
	}
	if entry.isRunning {
		s.jobMu.Unlock()
		s.logger.Debug().Str("job_name", name).Msg("Previous run still active, skipping tick")
		return
	}
	// wg.Add must not race the Wait in Stop
	if s.stopped {
		s.jobMu.Unlock()
		s.logger.Debug().Str("job_name", name).Msg("Scheduler stopped, skipping run")
		return
	}
	entry.isRunning = true
	handler := entry.handler
	s.wg.Add(1)
	s.jobMu.Unlock()
	defer s.wg.Done()

	start := s.clock.Now()
	err := s.runHandler(name, handler)
	finished := s.clock.Now()

	s.jobMu.Lock()
	entry.isRunning = false
	entry.lastRun = &finished
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Error().
			Str("job_name", name).
			Err(err).
			Dur("duration", finished.Sub(start)).
			Msg("Job execution failed")
		return
	}
	s.logger.Info().
		Str("job_name", name).
		Dur("duration", finished.Sub(start)).
		Msg("Job execution completed")
}

func (s *Service) runHandler(name string, handler interfaces.JobHandler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("job_name", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("Recovered from panic in job")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(s.ctx)
}
