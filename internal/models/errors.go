package models

import "errors"

var (
	// ErrInvalidFilter is returned when an aggregation filter is rejected
	ErrInvalidFilter = errors.New("invalid aggregation filter")

	// ErrInvalidTransition is returned when an alert status change is not a legal forward move
	ErrInvalidTransition = errors.New("invalid alert status transition")

	ErrAlertNotFound          = errors.New("alert not found")
	ErrWatchlistEntryNotFound = errors.New("watchlist entry not found")
	ErrWatchlistEntryExists   = errors.New("watchlist entry already exists")
)
