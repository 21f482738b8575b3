// -----------------------------------------------------------------------
// Aggregation engine: filtered rollups, trend slots and global stats
// -----------------------------------------------------------------------

package aggregation

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/sentio/internal/models"
)

// Engine folds scored articles into rollups. It holds no state between calls;
// the same items and filter at the same clock time produce identical output.
type Engine struct {
	clock  clockwork.Clock
	logger arbor.ILogger
}

// NewEngine creates an aggregation engine. A nil clock uses the real clock.
func NewEngine(clock clockwork.Clock, logger arbor.ILogger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{clock: clock, logger: logger}
}

// Aggregate validates filter, selects matching items and computes global
// stats, entity/source/country rollups and the trend series. An invalid
// filter is rejected before any computation with an error wrapping
// models.ErrInvalidFilter.
func (e *Engine) Aggregate(ctx context.Context, items []models.ScoredArticle, filter models.Filter) (*models.AggregateResult, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	from := now.Add(-filter.DateRange.Duration())
	matched := Match(items, filter, from, now)

	result := &models.AggregateResult{
		Filter:      filter,
		GeneratedAt: now,
	}

	// each reduction writes only its own field
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Overall = globalStats(matched)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Entities = rollup(matched, entityKeys)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Sources = rollup(matched, sourceKey)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Countries = rollup(matched, countryKey)
		return gctx.Err()
	})
	g.Go(func() error {
		result.Trend = trend(matched, filter.DateRange, from)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("date_range", string(filter.DateRange)).
		Str("source", filter.Source).
		Str("search", filter.Search).
		Int("input", len(items)).
		Int("matched", len(matched)).
		Int("entities", len(result.Entities)).
		Msg("Aggregation complete")

	return result, nil
}

// EntityRollups recomputes every entity's bucket from all of items, ignoring
// publication time. Watch-list sentiment is the mean over every known item
// mentioning the entity, so nothing ages out between evaluations.
func (e *Engine) EntityRollups(ctx context.Context, items []models.ScoredArticle) (*models.AggregateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.AggregateResult{
		Filter:      models.Filter{Source: models.SourceAll},
		GeneratedAt: e.clock.Now(),
		Overall:     globalStats(items),
		Entities:    rollup(items, entityKeys),
	}

	e.logger.Debug().
		Int("input", len(items)).
		Int("entities", len(result.Entities)).
		Msg("Entity recompute complete")

	return result, nil
}

// Match returns the items passing filter, in input order. The date window is
// inclusive at both ends.
func Match(items []models.ScoredArticle, filter models.Filter, from, to time.Time) []models.ScoredArticle {
	term := filter.SearchTerm()
	matched := make([]models.ScoredArticle, 0, len(items))

	for _, item := range items {
		if item.PublishedAt.Before(from) || item.PublishedAt.After(to) {
			continue
		}
		if filter.SourceEnabled() && !sourceMatches(item.Article, filter.Source) {
			continue
		}
		if term != "" && !searchMatches(item.Article, term) {
			continue
		}
		if !filter.AllowsCategory(item.Score.Category()) {
			continue
		}
		matched = append(matched, item)
	}
	return matched
}

func sourceMatches(a models.Article, source string) bool {
	if a.SourceID != "" {
		return a.SourceID == source
	}
	return a.SourceName == source
}

func searchMatches(a models.Article, term string) bool {
	for _, field := range []string{a.Headline, a.Summary, a.Content} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	for _, entity := range a.Entities {
		if strings.Contains(strings.ToLower(entity), term) {
			return true
		}
	}
	return false
}

func globalStats(items []models.ScoredArticle) models.GlobalStats {
	bucket := models.NewAggregateBucket("overall")
	for _, item := range items {
		bucket.Add(item.Score.FinalScore)
	}
	return models.GlobalStatsFromBucket(bucket)
}

type keyFunc func(models.Article) []string

func entityKeys(a models.Article) []string {
	return a.Entities
}

func sourceKey(a models.Article) []string {
	return []string{a.SourceLabel()}
}

func countryKey(a models.Article) []string {
	return []string{a.CountryLabel()}
}

// rollup buckets items by the keys keysOf returns. Keys are merged
// case-insensitively, displayed as first seen, and counted once per item.
func rollup(items []models.ScoredArticle, keysOf keyFunc) []models.BucketSummary {
	buckets := make(map[string]*models.AggregateBucket)
	order := make([]string, 0)

	for _, item := range items {
		seen := make(map[string]struct{})
		for _, raw := range keysOf(item.Article) {
			display := strings.TrimSpace(raw)
			if display == "" {
				continue
			}
			norm := strings.ToLower(display)
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}

			bucket, ok := buckets[norm]
			if !ok {
				bucket = models.NewAggregateBucket(display)
				buckets[norm] = bucket
				order = append(order, norm)
			}
			bucket.Add(item.Score.FinalScore)
		}
	}

	summaries := make([]models.BucketSummary, 0, len(order))
	for _, norm := range order {
		summaries = append(summaries, buckets[norm].Summary())
	}
	SortSummaries(summaries)
	return summaries
}

// SortSummaries orders by count descending, then case-insensitive key, then key.
func SortSummaries(summaries []models.BucketSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		al, bl := strings.ToLower(a.Key), strings.ToLower(b.Key)
		if al != bl {
			return al < bl
		}
		return a.Key < b.Key
	})
}

// trend partitions [from, from+range] into equal slots. An item stamped
// exactly at the end of the window falls in the last slot.
func trend(items []models.ScoredArticle, dateRange models.DateRange, from time.Time) []models.TrendPoint {
	n, width := dateRange.Slots()
	buckets := make([]*models.AggregateBucket, n)
	for i := range buckets {
		buckets[i] = models.NewAggregateBucket("")
	}

	for _, item := range items {
		idx := int(item.PublishedAt.Sub(from) / width)
		if idx < 0 {
			continue
		}
		if idx >= n {
			idx = n - 1
		}
		buckets[idx].Add(item.Score.FinalScore)
	}

	points := make([]models.TrendPoint, n)
	for i, b := range buckets {
		start := from.Add(time.Duration(i) * width)
		points[i] = models.TrendPoint{
			Start:           start,
			End:             start.Add(width),
			Count:           b.Count,
			AverageScore:    b.Average(),
			PositivePercent: b.PositivePercent(),
			NegativePercent: b.NegativePercent(),
			NeutralPercent:  b.NeutralPercent(),
		}
	}
	return points
}
