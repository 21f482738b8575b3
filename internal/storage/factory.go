package storage

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/storage/badger"
	"github.com/ternarybob/sentio/internal/storage/sqlite"
)

// Manager combines the Badger stores (watch-list, alerts, score cache) with
// the SQLite article table.
type Manager struct {
	badger   *badger.Manager
	sqlite   *sqlite.SQLiteDB
	articles *sqlite.ArticleStorage
	logger   arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewStorageManager opens both databases from config
func NewStorageManager(logger arbor.ILogger, config *common.Config) (*Manager, error) {
	badgerManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger storage: %w", err)
	}

	sqliteDB, err := sqlite.NewSQLiteDB(logger, &config.Storage.SQLite)
	if err != nil {
		badgerManager.Close()
		return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
	}

	return &Manager{
		badger:   badgerManager,
		sqlite:   sqliteDB,
		articles: sqlite.NewArticleStorage(sqliteDB, logger),
		logger:   logger,
	}, nil
}

func (m *Manager) WatchlistStorage() interfaces.WatchlistStorage {
	return m.badger.WatchlistStorage()
}

func (m *Manager) AlertStorage() interfaces.AlertStorage {
	return m.badger.AlertStorage()
}

func (m *Manager) ArticleStorage() interfaces.ArticleStore {
	return m.articles
}

// ScoreCache returns the Badger-backed persistent sentiment cache
func (m *Manager) ScoreCache(ttl time.Duration, clock clockwork.Clock) interfaces.SentimentCache {
	return m.badger.ScoreCache(ttl, clock)
}

// Close closes both databases, returning the first error
func (m *Manager) Close() error {
	sqliteErr := m.sqlite.Close()
	if err := m.badger.Close(); err != nil {
		return err
	}
	return sqliteErr
}
