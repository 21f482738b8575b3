package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/sentio/internal/models"
)

// ArticleSource supplies articles from the persistence layer
type ArticleSource interface {
	// ListUnscored returns up to limit articles with no stored score.
	// An empty source or "all" means every source.
	ListUnscored(ctx context.Context, source string, limit int) ([]models.Article, error)

	// ListScored returns scored articles published at or after since
	ListScored(ctx context.Context, since time.Time) ([]models.ScoredArticle, error)
}

// ScoreSink receives computed scores. Writes upsert keyed by article id.
type ScoreSink interface {
	UpsertScore(ctx context.Context, articleID string, item models.ScoredItem) error
}

// WatchlistStorage persists watch-list entries keyed by normalized name
type WatchlistStorage interface {
	SaveEntry(ctx context.Context, entry *models.WatchlistEntry) error
	GetEntry(ctx context.Context, name string) (*models.WatchlistEntry, error)
	ListEntries(ctx context.Context) ([]*models.WatchlistEntry, error)
	DeleteEntry(ctx context.Context, name string) error
}

// AlertStorage persists alerts across their lifecycle
type AlertStorage interface {
	SaveAlert(ctx context.Context, alert *models.Alert) error
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	// ListAlerts returns alerts with the given status, newest first
	ListAlerts(ctx context.Context, status models.AlertStatus) ([]*models.Alert, error)
}

// ArticleStore is the relational article table with its score sink
type ArticleStore interface {
	ArticleSource
	ScoreSink
	SaveArticle(ctx context.Context, article models.Article) error
}

// StorageManager owns every store the engine persists to
type StorageManager interface {
	WatchlistStorage() WatchlistStorage
	AlertStorage() AlertStorage
	ArticleStorage() ArticleStore
	Close() error
}
