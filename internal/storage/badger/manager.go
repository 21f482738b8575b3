package badger

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
)

// Manager groups the Badger-backed stores over one database
type Manager struct {
	db        *BadgerDB
	watchlist interfaces.WatchlistStorage
	alerts    interfaces.AlertStorage
	logger    arbor.ILogger
}

// NewManager opens the database and creates its stores
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		watchlist: NewWatchlistStorage(db, logger),
		alerts:    NewAlertStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("Badger storage manager initialized")
	return manager, nil
}

// WatchlistStorage returns the watch-list store
func (m *Manager) WatchlistStorage() interfaces.WatchlistStorage {
	return m.watchlist
}

// AlertStorage returns the alert store
func (m *Manager) AlertStorage() interfaces.AlertStorage {
	return m.alerts
}

// ScoreCache returns a persistent sentiment cache sharing this database
func (m *Manager) ScoreCache(ttl time.Duration, clock clockwork.Clock) interfaces.SentimentCache {
	return NewScoreCache(m.db, ttl, clock)
}

// Close closes the database
func (m *Manager) Close() error {
	return m.db.Close()
}
