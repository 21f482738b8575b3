package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ternarybob/sentio/internal/models"
)

// ArticleStorage is the article source and score sink for batch processing
// and alert evaluation.
type ArticleStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *SQLiteDB, logger arbor.ILogger) *ArticleStorage {
	return &ArticleStorage{db: db, logger: logger}
}

// SaveArticle inserts or replaces an article's text and metadata. Score
// columns are left untouched.
func (s *ArticleStorage) SaveArticle(ctx context.Context, article models.Article) error {
	if strings.TrimSpace(article.ID) == "" {
		return fmt.Errorf("article ID is required")
	}

	record := articleRecordFrom(article)
	err := s.db.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"headline", "summary", "content", "published_at",
			"source_id", "source_name", "country", "entities",
		}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save article %s: %w", article.ID, err)
	}
	return nil
}

// ListUnscored returns articles without a score, newest first. An empty or
// "all" source lists every source.
func (s *ArticleStorage) ListUnscored(ctx context.Context, source string, limit int) ([]models.Article, error) {
	query := s.db.DB().WithContext(ctx).
		Where("scored_at IS NULL").
		Order("published_at DESC").
		Order("id")

	if source = strings.TrimSpace(source); source != "" && !strings.EqualFold(source, models.SourceAll) {
		query = query.Where("source_id = ? OR (source_id = '' AND source_name = ?)", source, source)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []ArticleRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list unscored articles: %w", err)
	}

	articles := make([]models.Article, len(records))
	for i, r := range records {
		articles[i] = r.toArticle()
	}
	return articles, nil
}

// ListScored returns scored articles published at or after since, with the
// full fused result attached.
func (s *ArticleStorage) ListScored(ctx context.Context, since time.Time) ([]models.ScoredArticle, error) {
	var records []ArticleRecord
	err := s.db.DB().WithContext(ctx).
		Preload("Sentiment").
		Where("scored_at IS NOT NULL AND published_at >= ?", since.UTC()).
		Order("published_at DESC").
		Order("id").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scored articles: %w", err)
	}

	scored := make([]models.ScoredArticle, 0, len(records))
	for _, r := range records {
		if r.Sentiment == nil {
			continue
		}
		article := r.toArticle()
		scored = append(scored, models.ScoredArticle{
			Article: article,
			Score:   r.Sentiment.toScoredItem(models.NormalizeTextKey(article.AnalysisText())),
		})
	}
	return scored, nil
}

// UpsertScore stores item as the article's score and refreshes the summary
// columns in one transaction.
func (s *ArticleStorage) UpsertScore(ctx context.Context, articleID string, item models.ScoredItem) error {
	if strings.TrimSpace(articleID) == "" {
		return fmt.Errorf("article ID is required")
	}

	scoredAt := item.ScoredAt.UTC()
	return s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ArticleRecord{}).Where("id = ?", articleID).Updates(map[string]interface{}{
			"score":      item.FinalScore,
			"label":      string(item.Label),
			"confidence": item.Confidence,
			"scored_at":  scoredAt,
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update article %s: %w", articleID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("article %s not found", articleID)
		}

		record := SentimentScoreRecord{
			ArticleID:    articleID,
			LexiconScore: item.LexiconScore,
			LearnedScore: item.LearnedScore,
			FinalScore:   item.FinalScore,
			Confidence:   item.Confidence,
			Label:        string(item.Label),
			Cached:       item.Cached,
			ScoredAt:     scoredAt,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "article_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"lexicon_score", "learned_score", "final_score",
				"confidence", "label", "cached", "scored_at",
			}),
		}).Create(&record).Error
		if err != nil {
			return fmt.Errorf("failed to upsert score for %s: %w", articleID, err)
		}
		return nil
	})
}
