package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
)

// WatchlistStorage implements interfaces.WatchlistStorage. Entries are keyed
// by normalized name so lookups are case-insensitive.
type WatchlistStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewWatchlistStorage creates a new WatchlistStorage instance
func NewWatchlistStorage(db *BadgerDB, logger arbor.ILogger) interfaces.WatchlistStorage {
	return &WatchlistStorage{db: db, logger: logger}
}

func (s *WatchlistStorage) SaveEntry(ctx context.Context, entry *models.WatchlistEntry) error {
	if entry.Key() == "" {
		return fmt.Errorf("watch-list entry name is required")
	}
	if err := s.db.Store().Upsert(entry.Key(), entry); err != nil {
		return fmt.Errorf("failed to save watch-list entry: %w", err)
	}
	return nil
}

func (s *WatchlistStorage) GetEntry(ctx context.Context, name string) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	err := s.db.Store().Get(models.NormalizeTextKey(name), &entry)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrWatchlistEntryNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watch-list entry: %w", err)
	}
	return &entry, nil
}

// ListEntries returns all entries ordered by normalized name
func (s *WatchlistStorage) ListEntries(ctx context.Context) ([]*models.WatchlistEntry, error) {
	var entries []models.WatchlistEntry
	if err := s.db.Store().Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list watch-list: %w", err)
	}

	result := make([]*models.WatchlistEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key() < result[j].Key() })
	return result, nil
}

func (s *WatchlistStorage) DeleteEntry(ctx context.Context, name string) error {
	err := s.db.Store().Delete(models.NormalizeTextKey(name), models.WatchlistEntry{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("%w: %s", models.ErrWatchlistEntryNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("failed to delete watch-list entry: %w", err)
	}
	return nil
}
