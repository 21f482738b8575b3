package models

import (
	"math"
	"time"
)

// AggregateBucket accumulates scored items for one dimension value.
// PositiveCount + NegativeCount + NeutralCount always equals Count.
type AggregateBucket struct {
	Key           string  `json:"key"`
	Count         int     `json:"count"`
	SumScore      float64 `json:"sum_score"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}

// NewAggregateBucket creates an empty bucket for key
func NewAggregateBucket(key string) *AggregateBucket {
	return &AggregateBucket{Key: key}
}

// Add folds one final score into the bucket.
func (b *AggregateBucket) Add(finalScore float64) {
	b.Count++
	b.SumScore += finalScore
	switch CategoryFor(finalScore) {
	case CategoryPositive:
		b.PositiveCount++
	case CategoryNegative:
		b.NegativeCount++
	default:
		b.NeutralCount++
	}
}

// Average returns SumScore/Count, or 0 for an empty bucket.
func (b *AggregateBucket) Average() float64 {
	if b.Count == 0 {
		return 0
	}
	return b.SumScore / float64(b.Count)
}

func (b *AggregateBucket) PositivePercent() int { return Percent(b.PositiveCount, b.Count) }
func (b *AggregateBucket) NegativePercent() int { return Percent(b.NegativeCount, b.Count) }
func (b *AggregateBucket) NeutralPercent() int  { return Percent(b.NeutralCount, b.Count) }

// Summary snapshots the bucket together with its derived values.
func (b *AggregateBucket) Summary() BucketSummary {
	return BucketSummary{
		Key:             b.Key,
		Count:           b.Count,
		Average:         b.Average(),
		PositiveCount:   b.PositiveCount,
		NegativeCount:   b.NegativeCount,
		NeutralCount:    b.NeutralCount,
		PositivePercent: b.PositivePercent(),
		NegativePercent: b.NegativePercent(),
		NeutralPercent:  b.NeutralPercent(),
	}
}

// Percent computes round(n/count*100). Percentages are rounded independently
// and are not forced to sum to 100.
func Percent(n, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(count) * 100))
}

// BucketSummary is the read-only view of a bucket returned to callers
type BucketSummary struct {
	Key             string  `json:"key"`
	Count           int     `json:"count"`
	Average         float64 `json:"average"`
	PositiveCount   int     `json:"positive_count"`
	NegativeCount   int     `json:"negative_count"`
	NeutralCount    int     `json:"neutral_count"`
	PositivePercent int     `json:"positive_percent"`
	NegativePercent int     `json:"negative_percent"`
	NeutralPercent  int     `json:"neutral_percent"`
}

// TrendPoint is one time slot of the trend series.
type TrendPoint struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Count           int       `json:"count"`
	AverageScore    float64   `json:"average_score"`
	PositivePercent int       `json:"positive_percent"`
	NegativePercent int       `json:"negative_percent"`
	NeutralPercent  int       `json:"neutral_percent"`
}

// GlobalStats summarises every item that matched the filter.
type GlobalStats struct {
	Total           int     `json:"total"`
	Overall         float64 `json:"overall"`
	Positive        int     `json:"positive"`
	Negative        int     `json:"negative"`
	Neutral         int     `json:"neutral"`
	PositivePercent int     `json:"positive_percent"`
	NegativePercent int     `json:"negative_percent"`
	NeutralPercent  int     `json:"neutral_percent"`
}

// GlobalStatsFromBucket derives the global stats from a bucket covering all matched items
func GlobalStatsFromBucket(b *AggregateBucket) GlobalStats {
	return GlobalStats{
		Total:           b.Count,
		Overall:         b.Average(),
		Positive:        b.PositiveCount,
		Negative:        b.NegativeCount,
		Neutral:         b.NeutralCount,
		PositivePercent: b.PositivePercent(),
		NegativePercent: b.NegativePercent(),
		NeutralPercent:  b.NeutralPercent(),
	}
}

// AggregateResult is the full output of one aggregation run.
// Rollup slices are sorted by count descending then case-insensitive key.
type AggregateResult struct {
	Filter      Filter          `json:"filter"`
	GeneratedAt time.Time       `json:"generated_at"`
	Overall     GlobalStats     `json:"overall"`
	Entities    []BucketSummary `json:"entities"`
	Sources     []BucketSummary `json:"sources"`
	Countries   []BucketSummary `json:"countries"`
	Trend       []TrendPoint    `json:"trend"`
}

func (r *AggregateResult) TopEntities(n int) []BucketSummary  { return topN(r.Entities, n) }
func (r *AggregateResult) TopSources(n int) []BucketSummary   { return topN(r.Sources, n) }
func (r *AggregateResult) TopCountries(n int) []BucketSummary { return topN(r.Countries, n) }

// Entity looks up the rollup for one entity name, case-insensitively.
func (r *AggregateResult) Entity(name string) (BucketSummary, bool) {
	key := NormalizeTextKey(name)
	for _, e := range r.Entities {
		if NormalizeTextKey(e.Key) == key {
			return e, true
		}
	}
	return BucketSummary{}, false
}

func topN(items []BucketSummary, n int) []BucketSummary {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
