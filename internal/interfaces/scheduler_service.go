package interfaces

import (
	"context"
	"time"
)

// JobStatus represents the current status of a scheduled job
type JobStatus struct {
	Name        string     `json:"name"`
	Enabled     bool       `json:"enabled"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	IsRunning   bool       `json:"is_running"`
	LastError   string     `json:"last_error,omitempty"`
}

// JobHandler is one scheduled unit of work
type JobHandler func(ctx context.Context) error

// SchedulerService manages cron-based background jobs
type SchedulerService interface {
	Start() error
	Stop() error
	IsRunning() bool

	// RegisterJob registers a job. A job never overlaps itself: a tick that
	// arrives while the previous run is still going is skipped.
	RegisterJob(name, schedule, description string, handler JobHandler) error
	EnableJob(name string) error
	DisableJob(name string) error

	// TriggerJob runs a job now in the background
	TriggerJob(name string) error

	GetJobStatus(name string) (*JobStatus, error)
	GetAllJobStatuses() map[string]*JobStatus
}
