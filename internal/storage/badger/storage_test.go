package badger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestWatchlistStorage_CRUD(t *testing.T) {
	db := openTestDB(t)
	storage := NewWatchlistStorage(db, arbor.NewLogger())
	ctx := context.Background()

	entry := models.NewWatchlistEntry("Acme Corp", time.Now())
	entry.Threshold = 25
	require.NoError(t, storage.SaveEntry(ctx, entry))
	require.NoError(t, storage.SaveEntry(ctx, models.NewWatchlistEntry("Globex", time.Now())))

	got, err := storage.GetEntry(ctx, "ACME CORP")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, 25, got.Threshold)
	assert.True(t, got.AlertEnabled)

	got.LastKnownSentiment = -0.4
	require.NoError(t, storage.SaveEntry(ctx, got))

	entries, err := storage.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Acme Corp", entries[0].Name)
	assert.Equal(t, -0.4, entries[0].LastKnownSentiment)

	require.NoError(t, storage.DeleteEntry(ctx, "acme corp"))
	_, err = storage.GetEntry(ctx, "acme corp")
	assert.ErrorIs(t, err, models.ErrWatchlistEntryNotFound)
	assert.ErrorIs(t, storage.DeleteEntry(ctx, "acme corp"), models.ErrWatchlistEntryNotFound)
}

func TestAlertStorage_ListByStatus(t *testing.T) {
	db := openTestDB(t)
	storage := NewAlertStorage(db, arbor.NewLogger())
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "a2", "a3"} {
		require.NoError(t, storage.SaveAlert(ctx, &models.Alert{
			ID:        id,
			Entity:    "Acme",
			Type:      models.AlertTypeSentimentSpike,
			Priority:  models.AlertPriorityEmerging,
			Status:    models.AlertStatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	a2, err := storage.GetAlert(ctx, "a2")
	require.NoError(t, err)
	require.NoError(t, a2.TransitionTo(models.AlertStatusDismissed, base.Add(5*time.Hour)))
	require.NoError(t, storage.SaveAlert(ctx, a2))

	active, err := storage.ListAlerts(ctx, models.AlertStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a3", active[0].ID)
	assert.Equal(t, "a1", active[1].ID)

	dismissed, err := storage.ListAlerts(ctx, models.AlertStatusDismissed)
	require.NoError(t, err)
	require.Len(t, dismissed, 1)
	require.NotNil(t, dismissed[0].ClosedAt)

	_, err = storage.GetAlert(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrAlertNotFound)
	assert.Error(t, storage.SaveAlert(ctx, &models.Alert{}))
}

func TestScoreCache(t *testing.T) {
	db := openTestDB(t)
	clock := clockwork.NewFakeClock()
	cache := NewScoreCache(db, 6*time.Hour, clock)
	ctx := context.Background()

	_, err := cache.Get(ctx, "stocks rally")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	require.NoError(t, cache.Put(ctx, "stocks rally", 0.61))
	entry, err := cache.Get(ctx, "stocks rally")
	require.NoError(t, err)
	assert.Equal(t, 0.61, entry.FinalScore)

	clock.Advance(6 * time.Hour)
	_, err = cache.Get(ctx, "stocks rally")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	require.NoError(t, cache.Put(ctx, "stocks rally", 0.2))
	require.NoError(t, cache.Evict(ctx, "stocks rally"))
	_, err = cache.Get(ctx, "stocks rally")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestScoreCache_LongText(t *testing.T) {
	db := openTestDB(t)
	cache := NewScoreCache(db, 6*time.Hour, clockwork.NewFakeClock())
	ctx := context.Background()

	long := strings.Repeat("a", 70000)
	require.NoError(t, cache.Put(ctx, long, -0.4))

	entry, err := cache.Get(ctx, long)
	require.NoError(t, err)
	assert.Equal(t, -0.4, entry.FinalScore)

	_, err = cache.Get(ctx, long+"b")
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)

	require.NoError(t, cache.Evict(ctx, long))
	_, err = cache.Get(ctx, long)
	assert.ErrorIs(t, err, interfaces.ErrCacheMiss)
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: dir})
	require.NoError(t, err)
	require.NoError(t, NewWatchlistStorage(db, arbor.NewLogger()).SaveEntry(ctx, models.NewWatchlistEntry("Acme", time.Now())))
	require.NoError(t, db.Close())

	db, err = NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{Path: dir, ResetOnStartup: true})
	require.NoError(t, err)
	defer db.Close()

	entries, err := NewWatchlistStorage(db, arbor.NewLogger()).ListEntries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
