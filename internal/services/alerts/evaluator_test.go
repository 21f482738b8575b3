package alerts

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/models"
)

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func rollupsFor(buckets ...models.BucketSummary) *models.AggregateResult {
	return &models.AggregateResult{Entities: buckets}
}

func evaluatedEntry(name string, last float64, threshold int) *models.WatchlistEntry {
	e := models.NewWatchlistEntry(name, testNow.Add(-48*time.Hour))
	e.LastKnownSentiment = last
	e.LastEvaluatedAt = testNow.Add(-time.Hour)
	e.Threshold = threshold
	return e
}

func TestChangePoints(t *testing.T) {
	assert.Equal(t, 40.0, ChangePoints(0.1, 0.5))
	assert.Equal(t, 40.0, ChangePoints(0.5, 0.1))
	assert.Equal(t, 0.0, ChangePoints(0.3, 0.3))
	assert.Equal(t, 12.34, ChangePoints(0, 0.1234))
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		change    float64
		threshold int
		want      models.AlertPriority
	}{
		{30.01, 30, models.AlertPriorityEmerging},
		{39.99, 30, models.AlertPriorityEmerging},
		{40, 30, models.AlertPriorityEscalating},
		{60, 30, models.AlertPriorityEscalating},
		{60.01, 30, models.AlertPriorityCritical},
		{200, 30, models.AlertPriorityCritical},
		{25, 10, models.AlertPriorityEscalating},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PriorityFor(tt.change, tt.threshold), "change %.2f threshold %d", tt.change, tt.threshold)
	}
}

func TestPriorityFor_Monotonic(t *testing.T) {
	for threshold := models.MinAlertThreshold; threshold <= models.MaxAlertThreshold; threshold += 5 {
		prev := 0
		for change := float64(threshold) + 0.5; change < 200; change += 0.5 {
			rank := PriorityFor(change, threshold).Rank()
			assert.GreaterOrEqual(t, rank, prev)
			prev = rank
		}
	}
}

func TestEvaluate_SpikeEscalating(t *testing.T) {
	ev := NewEvaluator(clockwork.NewFakeClockAt(testNow), createTestLogger())
	entry := evaluatedEntry("Acme", 0.1, 30)

	alerts := ev.Evaluate([]*models.WatchlistEntry{entry}, rollupsFor(models.BucketSummary{Key: "Acme", Count: 2, Average: 0.5}))

	require.Len(t, alerts, 1)
	a := alerts[0]
	assert.Equal(t, models.AlertTypeSentimentSpike, a.Type)
	assert.Equal(t, 40.0, a.ChangeMagnitude)
	assert.Equal(t, models.AlertPriorityEscalating, a.Priority)
	assert.Equal(t, models.AlertStatusActive, a.Status)
	assert.Equal(t, "Acme", a.Entity)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, testNow, a.CreatedAt)

	assert.Equal(t, 0.5, entry.LastKnownSentiment)
	assert.Equal(t, testNow, entry.LastEvaluatedAt)
}

func TestEvaluate_ChangeAtThresholdDoesNotFire(t *testing.T) {
	ev := NewEvaluator(clockwork.NewFakeClockAt(testNow), createTestLogger())
	entry := evaluatedEntry("Acme", 0.1, 30)

	alerts := ev.Evaluate([]*models.WatchlistEntry{entry}, rollupsFor(models.BucketSummary{Key: "acme", Count: 1, Average: 0.4}))
	assert.Empty(t, alerts)
	assert.Equal(t, 0.4, entry.LastKnownSentiment)
}

func TestEvaluate_FirstEvaluationRecordsBaseline(t *testing.T) {
	ev := NewEvaluator(clockwork.NewFakeClockAt(testNow), createTestLogger())
	entry := models.NewWatchlistEntry("Acme", testNow)

	alerts := ev.Evaluate([]*models.WatchlistEntry{entry}, rollupsFor(models.BucketSummary{Key: "Acme", Count: 1, Average: 0.9}))
	assert.Empty(t, alerts)
	assert.Equal(t, 0.9, entry.LastKnownSentiment)
	assert.False(t, entry.LastEvaluatedAt.IsZero())
}

func TestEvaluate_DisabledEntryUpdatesWithoutAlert(t *testing.T) {
	ev := NewEvaluator(clockwork.NewFakeClockAt(testNow), createTestLogger())
	entry := evaluatedEntry("Acme", 0.9, 10)
	entry.AlertEnabled = false

	alerts := ev.Evaluate([]*models.WatchlistEntry{entry}, rollupsFor(models.BucketSummary{Key: "Acme", Count: 5, Average: -0.9}))
	assert.Empty(t, alerts)
	assert.Equal(t, -0.9, entry.LastKnownSentiment)
}

func TestEvaluate_NoItemsLeavesEntryUntouched(t *testing.T) {
	ev := NewEvaluator(clockwork.NewFakeClockAt(testNow), createTestLogger())
	entry := evaluatedEntry("Acme", 0.4, 30)
	before := entry.LastEvaluatedAt

	alerts := ev.Evaluate([]*models.WatchlistEntry{entry}, rollupsFor(models.BucketSummary{Key: "Globex", Count: 3, Average: -0.9}))
	assert.Empty(t, alerts)
	assert.Equal(t, 0.4, entry.LastKnownSentiment)
	assert.Equal(t, before, entry.LastEvaluatedAt)
}

func TestEvaluate_SustainedNegative(t *testing.T) {
	ev := NewEvaluator(clockwork.NewFakeClockAt(testNow), createTestLogger())

	steady := evaluatedEntry("Acme", -0.3, 30)
	few := evaluatedEntry("Globex", -0.3, 30)

	alerts := ev.Evaluate([]*models.WatchlistEntry{steady, few}, rollupsFor(
		models.BucketSummary{Key: "Acme", Count: 3, Average: -0.35},
		models.BucketSummary{Key: "Globex", Count: 2, Average: -0.35},
	))

	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertTypeSustainedNegative, alerts[0].Type)
	assert.Equal(t, models.AlertPriorityEmerging, alerts[0].Priority)
	assert.Equal(t, "Acme", alerts[0].Entity)
}

func TestEvaluate_DefaultThreshold(t *testing.T) {
	ev := NewEvaluator(clockwork.NewFakeClockAt(testNow), createTestLogger())
	entry := evaluatedEntry("Acme", 0, 0)

	alerts := ev.Evaluate([]*models.WatchlistEntry{entry}, rollupsFor(models.BucketSummary{Key: "Acme", Count: 1, Average: 0.31}))
	require.Len(t, alerts, 1)
	assert.Equal(t, models.DefaultAlertThreshold, alerts[0].Threshold)
}
