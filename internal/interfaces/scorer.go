package interfaces

import (
	"context"

	"github.com/ternarybob/sentio/internal/models"
)

// LexiconScorer is the synchronous rule-based scorer. It has no failure mode.
type LexiconScorer interface {
	Score(text string) float64
}

// LearnedScorer wraps a classifier that may be slow or unavailable. It falls
// back internally and only returns an error when ctx is done.
type LearnedScorer interface {
	Score(ctx context.Context, text string) (float64, error)
	State() LearnedScorerState
}

// LearnedScorerState is the model initialization state
type LearnedScorerState string

const (
	LearnedStateUninitialized       LearnedScorerState = "uninitialized"
	LearnedStateInitializing        LearnedScorerState = "initializing"
	LearnedStateReady               LearnedScorerState = "ready"
	LearnedStatePermanentlyDegraded LearnedScorerState = "permanently_degraded"
)

// Classifier is a binary sentiment model backend.
type Classifier interface {
	// Name identifies the backend in logs
	Name() string

	// Load prepares the model. Called at most once per process.
	Load(ctx context.Context) error

	// Classify returns the predicted label and its probability.
	Classify(ctx context.Context, text string) (label string, probability float64, err error)
}

// FusionEngine produces a fused ScoredItem for a text. Analyze never fails.
type FusionEngine interface {
	Analyze(ctx context.Context, text string, useCache bool) models.ScoredItem
}
