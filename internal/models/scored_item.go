package models

import (
	"math"
	"strings"
	"time"
)

// Category is the categorical reading of a sentiment score.
type Category string

const (
	CategoryPositive Category = "positive"
	CategoryNegative Category = "negative"
	CategoryNeutral  Category = "neutral"
)

// Threshold constants. CategoryThreshold drives every aggregation, dashboard
// and alert count. FusedLabelThreshold is used only for the label returned
// alongside a single fused score. The two bands are kept distinct on purpose.
const (
	CategoryThreshold   = 0.2
	FusedLabelThreshold = 0.1

	// ConfidenceScale maps |final_score| onto confidence
	ConfidenceScale = 1.2
)

// AllCategories lists the categories in their canonical order
var AllCategories = []Category{CategoryPositive, CategoryNegative, CategoryNeutral}

// CategoryFor classifies a score with the ±0.2 band.
func CategoryFor(score float64) Category {
	switch {
	case score > CategoryThreshold:
		return CategoryPositive
	case score < -CategoryThreshold:
		return CategoryNegative
	default:
		return CategoryNeutral
	}
}

// FusedLabelFor classifies a fused score with the tighter ±0.1 band.
func FusedLabelFor(score float64) Category {
	if math.Abs(score) < FusedLabelThreshold {
		return CategoryNeutral
	}
	if score > 0 {
		return CategoryPositive
	}
	return CategoryNegative
}

// ConfidenceFor derives confidence from a final score
func ConfidenceFor(score float64) float64 {
	return math.Min(1, math.Abs(score)*ConfidenceScale)
}

// NormalizeTextKey produces the cache/identity key for a text.
func NormalizeTextKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// ScoredItem is the immutable result of fusing the lexicon and learned scores
// for one input text.
//
// On a cache hit the per-model breakdown is not available: LexiconScore and
// LearnedScore are both set to FinalScore and Cached is true.
type ScoredItem struct {
	TextKey      string    `json:"text_key"`
	LexiconScore float64   `json:"lexicon_score"`
	LearnedScore float64   `json:"learned_score"`
	FinalScore   float64   `json:"final_score"`
	Confidence   float64   `json:"confidence"`
	Label        Category  `json:"label"`  // fused label, ±0.1 band
	Cached       bool      `json:"cached"` // replayed from the sentiment cache
	ScoredAt     time.Time `json:"scored_at"`
}

// NewScoredItemFromScore builds an item whose confidence and label are derived
// from finalScore alone.
func NewScoredItemFromScore(textKey string, lexicon, learned, finalScore float64, scoredAt time.Time) ScoredItem {
	return ScoredItem{
		TextKey:      textKey,
		LexiconScore: lexicon,
		LearnedScore: learned,
		FinalScore:   finalScore,
		Confidence:   ConfidenceFor(finalScore),
		Label:        FusedLabelFor(finalScore),
		ScoredAt:     scoredAt,
	}
}

// NeutralScoredItem is returned when no scorer produced a usable score.
func NeutralScoredItem(textKey string, scoredAt time.Time) ScoredItem {
	return ScoredItem{
		TextKey:  textKey,
		Label:    CategoryNeutral,
		ScoredAt: scoredAt,
	}
}

// Category returns the ±0.2 category of the final score. It is never stored.
func (s ScoredItem) Category() Category {
	return CategoryFor(s.FinalScore)
}

// Inconclusive reports whether the item carries no signal at all (pending or
// failed fusion) as opposed to a genuinely neutral reading.
func (s ScoredItem) Inconclusive() bool {
	return s.Confidence == 0 && s.FinalScore == 0
}
