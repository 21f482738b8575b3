// -----------------------------------------------------------------------
// Fusion engine: lexicon + learned scores with length-dependent weights
// -----------------------------------------------------------------------

package fusion

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/metrics"
	"github.com/ternarybob/sentio/internal/models"
)

const (
	// DefaultLongTextThreshold is the character count above which texts are "long"
	DefaultLongTextThreshold = 100

	baseLexiconWeight  = 0.4
	longTextAdjustment = -0.1
	maxLexiconWeight   = 0.6
)

// LexiconWeight returns the lexicon leg's weight for a text of length chars.
// The learned leg gets 1 - LexiconWeight.
func LexiconWeight(length, longTextThreshold int) float64 {
	w := baseLexiconWeight
	if length > longTextThreshold {
		w += longTextAdjustment
	}
	if w > maxLexiconWeight {
		w = maxLexiconWeight
	}
	return w
}

// Engine fuses the lexicon and learned scorers and owns the sentiment cache.
type Engine struct {
	lexicon           interfaces.LexiconScorer
	learned           interfaces.LearnedScorer
	cache             interfaces.SentimentCache
	clock             clockwork.Clock
	logger            arbor.ILogger
	longTextThreshold int
}

// Option customises an Engine
type Option func(*Engine)

// WithClock sets the clock used to stamp ScoredAt
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLongTextThreshold overrides DefaultLongTextThreshold
func WithLongTextThreshold(chars int) Option {
	return func(e *Engine) {
		if chars > 0 {
			e.longTextThreshold = chars
		}
	}
}

// NewEngine creates a fusion engine. cache may be nil to disable caching.
func NewEngine(lexicon interfaces.LexiconScorer, learned interfaces.LearnedScorer, cache interfaces.SentimentCache, logger arbor.ILogger, opts ...Option) *Engine {
	e := &Engine{
		lexicon:           lexicon,
		learned:           learned,
		cache:             cache,
		clock:             clockwork.NewRealClock(),
		logger:            logger,
		longTextThreshold: DefaultLongTextThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze scores text. It never fails: scorer failures contribute 0 and a
// double failure yields a zero-confidence neutral item.
func (e *Engine) Analyze(ctx context.Context, text string, useCache bool) models.ScoredItem {
	start := time.Now()
	key := models.NormalizeTextKey(text)

	if useCache {
		if item, ok := e.lookup(ctx, key); ok {
			metrics.AnalyzeDuration.WithLabelValues("true").Observe(time.Since(start).Seconds())
			return item
		}
	}

	lex, learned := e.score(ctx, text)
	now := e.clock.Now()

	if !lex.IsOk() {
		metrics.ScorerFailures.WithLabelValues("lexicon").Inc()
		e.logger.Debug().Err(lex.Err).Msg("Lexicon scorer failed, contributing 0")
	}
	if !learned.IsOk() {
		metrics.ScorerFailures.WithLabelValues("learned").Inc()
		e.logger.Debug().Err(learned.Err).Msg("Learned scorer failed, contributing 0")
	}

	if !lex.IsOk() && !learned.IsOk() {
		metrics.FusionTotalFailures.Inc()
		e.logger.Warn().
			Str("lexicon_error", lex.Err.Error()).
			Str("learned_error", learned.Err.Error()).
			Msg("Both scorers failed, returning inconclusive neutral item")
		return models.NeutralScoredItem(key, now)
	}

	lexW := LexiconWeight(utf8.RuneCountInString(text), e.longTextThreshold)
	final := lex.Value()*lexW + learned.Value()*(1-lexW)

	item := models.NewScoredItemFromScore(key, lex.Value(), learned.Value(), final, now)

	if useCache {
		e.store(ctx, key, final)
	}

	metrics.AnalyzeDuration.WithLabelValues("false").Observe(time.Since(start).Seconds())
	return item
}

// score runs both scorers concurrently and waits for both.
func (e *Engine) score(ctx context.Context, text string) (lex, learned ScorerResult) {
	var g errgroup.Group

	g.Go(func() error {
		defer recoverResult("lexicon", &lex)
		lex = Ok(e.lexicon.Score(text))
		return nil
	})

	g.Go(func() error {
		defer recoverResult("learned", &learned)
		score, err := e.learned.Score(ctx, text)
		if err != nil {
			learned = Failed(err)
			return nil
		}
		learned = Ok(score)
		return nil
	})

	_ = g.Wait()
	return lex, learned
}

func (e *Engine) lookup(ctx context.Context, key string) (models.ScoredItem, bool) {
	if e.cache == nil || key == "" {
		return models.ScoredItem{}, false
	}

	entry, err := e.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, interfaces.ErrCacheMiss) {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		} else {
			metrics.CacheLookups.WithLabelValues("error").Inc()
			e.logger.Warn().Err(err).Msg("Sentiment cache lookup failed, recomputing")
		}
		return models.ScoredItem{}, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()

	// the per-model breakdown is not cached; both legs replay the final score
	item := models.NewScoredItemFromScore(key, entry.FinalScore, entry.FinalScore, entry.FinalScore, e.clock.Now())
	item.Cached = true
	return item, true
}

func (e *Engine) store(ctx context.Context, key string, final float64) {
	if e.cache == nil || key == "" {
		return
	}
	if err := e.cache.Put(ctx, key, final); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to store score in sentiment cache")
	}
}
