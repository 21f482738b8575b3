package sqlite

import (
	"time"

	"github.com/ternarybob/sentio/internal/models"
)

// ArticleRecord is the articles table. The score summary columns are nil
// until the article has been scored.
type ArticleRecord struct {
	ID          string    `gorm:"primaryKey"`
	Headline    string    `gorm:"not null"`
	Summary     string
	Content     string
	PublishedAt time.Time `gorm:"index"`
	SourceID    string    `gorm:"index"`
	SourceName  string
	Country     string
	Entities    []string `gorm:"serializer:json"`

	Score      *float64
	Label      string
	Confidence *float64
	ScoredAt   *time.Time `gorm:"index"`

	Sentiment *SentimentScoreRecord `gorm:"foreignKey:ArticleID;references:ID"`
}

func (ArticleRecord) TableName() string { return "articles" }

// SentimentScoreRecord keeps the full fused result, one row per article
type SentimentScoreRecord struct {
	ID           uint   `gorm:"primaryKey"`
	ArticleID    string `gorm:"uniqueIndex;not null"`
	LexiconScore float64
	LearnedScore float64
	FinalScore   float64
	Confidence   float64
	Label        string
	Cached       bool
	ScoredAt     time.Time
}

func (SentimentScoreRecord) TableName() string { return "sentiment_scores" }

func articleRecordFrom(a models.Article) ArticleRecord {
	return ArticleRecord{
		ID:          a.ID,
		Headline:    a.Headline,
		Summary:     a.Summary,
		Content:     a.Content,
		PublishedAt: a.PublishedAt.UTC(),
		SourceID:    a.SourceID,
		SourceName:  a.SourceName,
		Country:     a.Country,
		Entities:    a.Entities,
	}
}

func (r ArticleRecord) toArticle() models.Article {
	return models.Article{
		ID:          r.ID,
		Headline:    r.Headline,
		Summary:     r.Summary,
		Content:     r.Content,
		PublishedAt: r.PublishedAt,
		SourceID:    r.SourceID,
		SourceName:  r.SourceName,
		Country:     r.Country,
		Entities:    r.Entities,
	}
}

func (r SentimentScoreRecord) toScoredItem(textKey string) models.ScoredItem {
	return models.ScoredItem{
		TextKey:      textKey,
		LexiconScore: r.LexiconScore,
		LearnedScore: r.LearnedScore,
		FinalScore:   r.FinalScore,
		Confidence:   r.Confidence,
		Label:        models.Category(r.Label),
		Cached:       r.Cached,
		ScoredAt:     r.ScoredAt,
	}
}
