// -----------------------------------------------------------------------
// Learned scorer: lazy single-flight model init with sticky degradation
// -----------------------------------------------------------------------

package learned

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/singleflight"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/metrics"
	"github.com/ternarybob/sentio/internal/services/lexicon"
)

var (
	// ErrScorerUnavailable marks the learned model as permanently degraded
	ErrScorerUnavailable = errors.New("learned scorer unavailable")

	// ErrEmptyInput is returned by classifiers asked to classify blank text
	ErrEmptyInput = errors.New("empty input")
)

const (
	DefaultCharCap     = 500
	DefaultCallTimeout = 10 * time.Second
	DefaultInitTimeout = 2 * time.Minute
)

// Options tunes a Scorer. Zero values take the defaults above.
type Options struct {
	CharCap     int
	CallTimeout time.Duration
	InitTimeout time.Duration
}

// Scorer maps a binary classifier onto a signed score in [-1, 1].
//
// The classifier is loaded once per process on first use. A load failure moves
// the scorer to PermanentlyDegraded and every later call answers from the
// fallback heuristic. A failed call on a ready model falls back for that call only.
type Scorer struct {
	classifier interfaces.Classifier
	fallback   interfaces.LexiconScorer
	logger     arbor.ILogger
	opts       Options

	mu    sync.RWMutex
	state interfaces.LearnedScorerState
	group singleflight.Group
}

// NewScorer creates a scorer around classifier. A nil classifier yields a
// scorer that degrades on first use.
func NewScorer(classifier interfaces.Classifier, fallback interfaces.LexiconScorer, logger arbor.ILogger, opts Options) *Scorer {
	if fallback == nil {
		fallback = lexicon.NewFallbackScorer()
	}
	if opts.CharCap <= 0 {
		opts.CharCap = DefaultCharCap
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.InitTimeout <= 0 {
		opts.InitTimeout = DefaultInitTimeout
	}

	return &Scorer{
		classifier: classifier,
		fallback:   fallback,
		logger:     logger,
		opts:       opts,
		state:      interfaces.LearnedStateUninitialized,
	}
}

// State returns the current model state
func (s *Scorer) State() interfaces.LearnedScorerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Score classifies text. Blank text scores 0 without touching the model.
// The only error returned is ctx's own when it ends before a score is ready.
func (s *Scorer) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}

	ready, err := s.ensureReady(ctx)
	if err != nil {
		return 0, err
	}
	if !ready {
		metrics.LearnedFallbacks.WithLabelValues("degraded").Inc()
		return s.fallback.Score(text), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	defer cancel()

	label, probability, err := s.classifier.Classify(callCtx, Truncate(text, s.opts.CharCap))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		s.logger.Debug().
			Err(err).
			Str("classifier", s.classifier.Name()).
			Msg("Learned scorer call failed, using fallback heuristic")
		metrics.LearnedFallbacks.WithLabelValues("call_error").Inc()
		return s.fallback.Score(text), nil
	}

	score, ok := LabelScore(label, probability)
	if !ok {
		s.logger.Debug().
			Str("label", label).
			Float64("probability", probability).
			Msg("Unrecognised classifier label, scoring neutral")
	}
	return score, nil
}

// ensureReady loads the classifier exactly once. Concurrent first callers wait
// for the same load; a caller whose ctx ends stops waiting but the load continues.
func (s *Scorer) ensureReady(ctx context.Context) (bool, error) {
	switch s.State() {
	case interfaces.LearnedStateReady:
		return true, nil
	case interfaces.LearnedStatePermanentlyDegraded:
		return false, nil
	}

	ch := s.group.DoChan("init", func() (interface{}, error) {
		s.initialize()
		return nil, nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	return s.State() == interfaces.LearnedStateReady, nil
}

func (s *Scorer) initialize() {
	s.mu.Lock()
	if s.state != interfaces.LearnedStateUninitialized {
		s.mu.Unlock()
		return
	}
	s.state = interfaces.LearnedStateInitializing
	s.mu.Unlock()

	if s.classifier == nil {
		s.degrade(ErrScorerUnavailable, "none")
		return
	}

	// Load is detached from any caller so a cancelled first request cannot poison the model
	loadCtx, cancel := context.WithTimeout(context.Background(), s.opts.InitTimeout)
	defer cancel()

	start := time.Now()
	err := s.loadClassifier(loadCtx)
	if err != nil {
		s.degrade(fmt.Errorf("%w: %v", ErrScorerUnavailable, err), s.classifier.Name())
		return
	}

	s.mu.Lock()
	s.state = interfaces.LearnedStateReady
	s.mu.Unlock()
	metrics.LearnedScorerDegraded.Set(0)

	s.logger.Info().
		Str("classifier", s.classifier.Name()).
		Dur("duration", time.Since(start)).
		Msg("Learned scorer model ready")
}

func (s *Scorer) loadClassifier(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier load panicked: %v", r)
		}
	}()
	return s.classifier.Load(ctx)
}

// degrade is reached at most once per process, so the warning is logged once.
func (s *Scorer) degrade(err error, classifier string) {
	s.mu.Lock()
	s.state = interfaces.LearnedStatePermanentlyDegraded
	s.mu.Unlock()
	metrics.LearnedScorerDegraded.Set(1)

	s.logger.Warn().
		Err(err).
		Str("classifier", classifier).
		Msg("Learned scorer permanently degraded, using fallback heuristic for remainder of process")
}

// LabelScore maps a classifier label onto a signed score. POSITIVE and LABEL_1
// are positive, NEGATIVE and LABEL_0 negative. Unknown labels score 0, false.
func LabelScore(label string, probability float64) (float64, bool) {
	p := lexicon.Clamp(probability)
	if p < 0 {
		p = 0
	}

	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POSITIVE", "LABEL_1", "POS":
		return p, true
	case "NEGATIVE", "LABEL_0", "NEG":
		return -p, true
	}
	return 0, false
}

// Truncate caps text at maxChars characters without splitting a rune.
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxChars])
}
