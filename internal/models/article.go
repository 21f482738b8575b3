package models

import (
	"strings"
	"time"
)

// Article is one news or social item supplied by the text source.
type Article struct {
	ID          string    `json:"id"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary,omitempty"`
	Content     string    `json:"content,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	SourceID    string    `json:"source_id"`   // canonical source identity, used for filtering
	SourceName  string    `json:"source_name"` // display name, used for source rollups
	Country     string    `json:"country,omitempty"`
	Entities    []string  `json:"entities,omitempty"`
}

// AnalysisText returns the text handed to the fusion engine: the body when
// present, otherwise headline and summary.
func (a Article) AnalysisText() string {
	if strings.TrimSpace(a.Content) != "" {
		return a.Content
	}
	return strings.TrimSpace(a.Headline + " " + a.Summary)
}

// SourceLabel is the rollup key for the source dimension
func (a Article) SourceLabel() string {
	if a.SourceName != "" {
		return a.SourceName
	}
	if a.SourceID != "" {
		return a.SourceID
	}
	return "unknown"
}

// CountryLabel is the rollup key for the country dimension
func (a Article) CountryLabel() string {
	if strings.TrimSpace(a.Country) == "" {
		return "Global"
	}
	return a.Country
}

// ScoredArticle pairs an article with its fused score.
type ScoredArticle struct {
	Article
	Score ScoredItem `json:"score"`
}
