package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateRange is one of the supported aggregation windows
type DateRange string

const (
	DateRange24h DateRange = "24h"
	DateRange7d  DateRange = "7d"
	DateRange30d DateRange = "30d"
)

// SourceAll disables the source filter
const SourceAll = "all"

// Duration returns the span covered by the range.
func (d DateRange) Duration() time.Duration {
	switch d {
	case DateRange24h:
		return 24 * time.Hour
	case DateRange7d:
		return 7 * 24 * time.Hour
	case DateRange30d:
		return 30 * 24 * time.Hour
	}
	return 0
}

// Slots returns the trend slot count and the width of one slot.
func (d DateRange) Slots() (int, time.Duration) {
	switch d {
	case DateRange24h:
		return 24, time.Hour
	case DateRange7d:
		return 7, 24 * time.Hour
	case DateRange30d:
		return 30, 24 * time.Hour
	}
	return 0, 0
}

// Filter is the active filter set for an aggregation run.
type Filter struct {
	DateRange  DateRange  `json:"date_range" validate:"required,oneof=24h 7d 30d"`
	Source     string     `json:"source,omitempty"`
	Search     string     `json:"search,omitempty"`
	Categories []Category `json:"categories,omitempty" validate:"omitempty,dive,oneof=positive negative neutral"`
}

var filterValidator = validator.New()

// Validate rejects unknown tokens eagerly. The returned error wraps ErrInvalidFilter.
func (f Filter) Validate() error {
	if err := filterValidator.Struct(f); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s value %q failed %q", ErrInvalidFilter, fe.Field(), fmt.Sprint(fe.Value()), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return nil
}

// SourceEnabled reports whether the source filter is active
func (f Filter) SourceEnabled() bool {
	return f.Source != "" && !strings.EqualFold(f.Source, SourceAll)
}

// SearchTerm returns the normalized search term, empty when no search is active
func (f Filter) SearchTerm() string {
	return strings.ToLower(strings.TrimSpace(f.Search))
}

// AllowsCategory reports whether items of category c pass the category toggles.
func (f Filter) AllowsCategory(c Category) bool {
	if len(f.Categories) == 0 {
		return true
	}
	for _, allowed := range f.Categories {
		if allowed == c {
			return true
		}
	}
	return false
}
