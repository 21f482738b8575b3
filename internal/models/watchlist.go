package models

import (
	"time"
)

const (
	DefaultAlertThreshold = 30
	MinAlertThreshold     = 10
	MaxAlertThreshold     = 50
)

// WatchlistEntry is a user-tracked entity. Name is the storage key; lookups
// are case-insensitive via NormalizeTextKey.
type WatchlistEntry struct {
	Name               string    `json:"name" validate:"required"`
	LastKnownSentiment float64   `json:"last_known_sentiment"`
	AlertEnabled       bool      `json:"alert_enabled"`
	Threshold          int       `json:"threshold" validate:"min=10,max=50"`
	LastEvaluatedAt    time.Time `json:"last_evaluated_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewWatchlistEntry creates an enabled entry with the default threshold
func NewWatchlistEntry(name string, now time.Time) *WatchlistEntry {
	return &WatchlistEntry{
		Name:         name,
		AlertEnabled: true,
		Threshold:    DefaultAlertThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Key returns the normalized name used for storage and matching
func (w *WatchlistEntry) Key() string {
	return NormalizeTextKey(w.Name)
}

// EffectiveThreshold falls back to the default when the stored threshold is unset
func (w *WatchlistEntry) EffectiveThreshold() int {
	if w.Threshold == 0 {
		return DefaultAlertThreshold
	}
	return w.Threshold
}

// Validate checks the entry's name and threshold range
func (w *WatchlistEntry) Validate() error {
	return filterValidator.Struct(w)
}
