package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/metrics"
	"github.com/ternarybob/sentio/internal/models"
)

const (
	DefaultWorkers = 4
	DefaultLimit   = 100
)

// Options bounds batch concurrency and model throughput
type Options struct {
	Workers       int
	RatePerSecond float64 // 0 for unlimited
	Burst         int
	Limit         int // default page size for ProcessPending
	UseCache      bool
}

// Failure records why one item of a batch was not scored
type Failure struct {
	ItemID string `json:"item_id"`
	Reason string `json:"reason"`
}

// Scored pairs an article with its fused result
type Scored struct {
	ArticleID string            `json:"article_id"`
	Item      models.ScoredItem `json:"item"`
}

// BatchResult lists scored items and failures in input order
type BatchResult struct {
	Scored   []Scored  `json:"scored"`
	Failures []Failure `json:"failures"`
}

// Processor scores articles on a fixed pool of workers. One item's failure
// never stops the rest of the batch.
type Processor struct {
	engine  interfaces.FusionEngine
	source  interfaces.ArticleSource
	sink    interfaces.ScoreSink
	limiter *rate.Limiter
	options Options
	logger  arbor.ILogger
}

// NewProcessor creates a processor. source and sink may be nil when only
// Process is used without write-back.
func NewProcessor(engine interfaces.FusionEngine, source interfaces.ArticleSource, sink interfaces.ScoreSink, logger arbor.ILogger, options Options) *Processor {
	if options.Workers <= 0 {
		options.Workers = DefaultWorkers
	}
	if options.Limit <= 0 {
		options.Limit = DefaultLimit
	}
	if options.Burst <= 0 {
		options.Burst = 1
	}

	limit := rate.Inf
	if options.RatePerSecond > 0 {
		limit = rate.Limit(options.RatePerSecond)
	}

	return &Processor{
		engine:  engine,
		source:  source,
		sink:    sink,
		limiter: rate.NewLimiter(limit, options.Burst),
		options: options,
		logger:  logger,
	}
}

type outcome struct {
	item   models.ScoredItem
	reason string
}

// Process scores articles with at most Options.Workers in flight
func (p *Processor) Process(ctx context.Context, articles []models.Article) BatchResult {
	outcomes := make([]outcome, len(articles))
	indexes := make(chan int)

	var wg sync.WaitGroup
	workers := p.options.Workers
	if workers > len(articles) {
		workers = len(articles)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.processOne(ctx, articles[i])
			}
		}()
	}

	for i := range articles {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	result := BatchResult{Scored: []Scored{}, Failures: []Failure{}}
	for i, o := range outcomes {
		if o.reason != "" {
			result.Failures = append(result.Failures, Failure{ItemID: articles[i].ID, Reason: o.reason})
			metrics.BatchItems.WithLabelValues("failed").Inc()
			continue
		}
		result.Scored = append(result.Scored, Scored{ArticleID: articles[i].ID, Item: o.item})
		metrics.BatchItems.WithLabelValues("scored").Inc()
	}

	p.logger.Info().
		Int("total", len(articles)).
		Int("scored", len(result.Scored)).
		Int("failed", len(result.Failures)).
		Msg("Batch processed")

	return result
}

// ProcessPending pulls up to limit unscored articles for source and scores
// them. limit <= 0 uses the configured default.
func (p *Processor) ProcessPending(ctx context.Context, source string, limit int) (BatchResult, error) {
	if p.source == nil {
		return BatchResult{}, fmt.Errorf("no article source configured")
	}
	if limit <= 0 {
		limit = p.options.Limit
	}

	start := time.Now()
	articles, err := p.source.ListUnscored(ctx, source, limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list pending articles: %w", err)
	}
	if len(articles) == 0 {
		p.logger.Debug().Str("source", source).Msg("No pending articles")
		return BatchResult{Scored: []Scored{}, Failures: []Failure{}}, nil
	}

	result := p.Process(ctx, articles)
	p.logger.Debug().Dur("duration", time.Since(start)).Str("source", source).Msg("Pending articles processed")
	return result, nil
}

func (p *Processor) processOne(ctx context.Context, article models.Article) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("article_id", article.ID).Str("panic", fmt.Sprint(r)).Msg("Panic while scoring article")
			o = outcome{reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if strings.TrimSpace(article.ID) == "" {
		return outcome{reason: "missing item id"}
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return outcome{reason: err.Error()}
	}

	item := p.engine.Analyze(ctx, article.AnalysisText(), p.options.UseCache)

	if p.sink != nil {
		if err := p.sink.UpsertScore(ctx, article.ID, item); err != nil {
			p.logger.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to store score")
			return outcome{reason: err.Error()}
		}
	}
	return outcome{item: item}
}
