package models

import (
	"fmt"
	"time"
)

// AlertStatus is the lifecycle state of an alert
type AlertStatus string

const (
	AlertStatusActive    AlertStatus = "active"
	AlertStatusDismissed AlertStatus = "dismissed"
	AlertStatusResolved  AlertStatus = "resolved"
)

// AlertPriority escalates with how far a change overshoots the threshold
type AlertPriority string

const (
	AlertPriorityEmerging   AlertPriority = "emerging"
	AlertPriorityEscalating AlertPriority = "escalating"
	AlertPriorityCritical   AlertPriority = "critical"
)

// Rank orders priorities for comparison; higher is more severe.
func (p AlertPriority) Rank() int {
	switch p {
	case AlertPriorityEmerging:
		return 1
	case AlertPriorityEscalating:
		return 2
	case AlertPriorityCritical:
		return 3
	}
	return 0
}

// AlertType distinguishes the rule that raised an alert
type AlertType string

const (
	AlertTypeSentimentSpike    AlertType = "sentiment_spike"
	AlertTypeSustainedNegative AlertType = "sustained_negative"
)

// Alert is raised by the evaluator for a watch-list entity.
type Alert struct {
	ID              string        `json:"id" badgerhold:"key"`
	Entity          string        `json:"entity" badgerholdIndex:"Entity"`
	Type            AlertType     `json:"type"`
	ChangeMagnitude float64       `json:"change_magnitude"` // percentage points
	PreviousScore   float64       `json:"previous_score"`
	CurrentScore    float64       `json:"current_score"`
	Threshold       int           `json:"threshold"`
	Priority        AlertPriority `json:"priority"`
	Status          AlertStatus   `json:"status" badgerholdIndex:"Status"`
	Message         string        `json:"message"`
	CreatedAt       time.Time     `json:"created_at"`
	ClosedAt        *time.Time    `json:"closed_at,omitempty"`
}

// IsActive reports whether the alert is still in the active set
func (a *Alert) IsActive() bool {
	return a.Status == AlertStatusActive
}

// TransitionTo applies a status change. Only active->dismissed and
// active->resolved are legal; nothing ever returns to active.
func (a *Alert) TransitionTo(status AlertStatus, at time.Time) error {
	if a.Status != AlertStatusActive {
		return fmt.Errorf("%w: alert %s is %s", ErrInvalidTransition, a.ID, a.Status)
	}
	switch status {
	case AlertStatusDismissed, AlertStatusResolved:
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}
	a.Status = status
	closed := at
	a.ClosedAt = &closed
	return nil
}
