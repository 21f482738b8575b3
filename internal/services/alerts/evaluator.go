package alerts

import (
	"fmt"
	"math"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/models"
)

const (
	// SustainedNegativeMinItems is the number of attributed items needed before a
	// negative mean is treated as sustained
	SustainedNegativeMinItems = 3

	emergingBand   = 10
	escalatingBand = 30
)

// ChangePoints is the absolute change between two scores in percentage
// points, rounded to two decimals.
func ChangePoints(previous, current float64) float64 {
	return math.Round(math.Abs(current-previous)*100*100) / 100
}

// PriorityFor tiers a change that exceeded threshold. Priority never decreases
// as change grows.
func PriorityFor(change float64, threshold int) models.AlertPriority {
	over := change - float64(threshold)
	switch {
	case over < emergingBand:
		return models.AlertPriorityEmerging
	case over <= escalatingBand:
		return models.AlertPriorityEscalating
	default:
		return models.AlertPriorityCritical
	}
}

// Evaluator compares watch-list entries against fresh entity rollups.
type Evaluator struct {
	clock  clockwork.Clock
	logger arbor.ILogger
}

// NewEvaluator creates an evaluator. A nil clock uses the real clock.
func NewEvaluator(clock clockwork.Clock, logger arbor.ILogger) *Evaluator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Evaluator{clock: clock, logger: logger}
}

// Evaluate recomputes each entry's sentiment from its entity rollup (the mean
// final score over every matching item) and returns the alerts raised.
//
// Entries are updated in place: LastKnownSentiment and LastEvaluatedAt move
// forward for every entry that has attributed items. Only entries with
// AlertEnabled raise alerts. An entry evaluated for the first time records a
// baseline and raises no spike alert.
func (e *Evaluator) Evaluate(watchlist []*models.WatchlistEntry, rollups *models.AggregateResult) []models.Alert {
	now := e.clock.Now()
	var raised []models.Alert

	for _, entry := range watchlist {
		rollup, ok := rollups.Entity(entry.Name)
		if !ok || rollup.Count == 0 {
			continue
		}

		previous := entry.LastKnownSentiment
		current := rollup.Average
		hasBaseline := !entry.LastEvaluatedAt.IsZero()

		entry.LastKnownSentiment = current
		entry.LastEvaluatedAt = now
		entry.UpdatedAt = now

		if !entry.AlertEnabled {
			continue
		}

		threshold := entry.EffectiveThreshold()

		if hasBaseline {
			change := ChangePoints(previous, current)
			if change > float64(threshold) {
				priority := PriorityFor(change, threshold)
				raised = append(raised, models.Alert{
					ID:              common.NewAlertID(),
					Entity:          entry.Name,
					Type:            models.AlertTypeSentimentSpike,
					ChangeMagnitude: change,
					PreviousScore:   previous,
					CurrentScore:    current,
					Threshold:       threshold,
					Priority:        priority,
					Status:          models.AlertStatusActive,
					Message:         spikeMessage(entry.Name, previous, current, change),
					CreatedAt:       now,
				})
			}
		}

		if current < -models.CategoryThreshold && rollup.Count >= SustainedNegativeMinItems {
			raised = append(raised, models.Alert{
				ID:              common.NewAlertID(),
				Entity:          entry.Name,
				Type:            models.AlertTypeSustainedNegative,
				ChangeMagnitude: ChangePoints(previous, current),
				PreviousScore:   previous,
				CurrentScore:    current,
				Threshold:       threshold,
				Priority:        models.AlertPriorityEmerging,
				Status:          models.AlertStatusActive,
				Message:         fmt.Sprintf("%s sentiment has stayed negative (%.2f) across %d items", entry.Name, current, rollup.Count),
				CreatedAt:       now,
			})
		}
	}

	e.logger.Debug().
		Int("entries", len(watchlist)).
		Int("alerts", len(raised)).
		Msg("Watch-list evaluated")

	return raised
}

func spikeMessage(entity string, previous, current, change float64) string {
	direction := "rose"
	if current < previous {
		direction = "fell"
	}
	return fmt.Sprintf("%s sentiment %s by %.0f points (%.2f -> %.2f)", entity, direction, change, previous, current)
}
