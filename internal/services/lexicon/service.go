package lexicon

import (
	"math"
	"strings"
	"unicode"
)

const (
	// DefaultWeight is the per-token contribution of the default lexicon
	DefaultWeight = 0.25

	// FallbackWeight is the per-token contribution of the fallback word list
	FallbackWeight = 0.1

	// NegationWindow is how many preceding tokens are checked for a negator
	NegationWindow = 3
)

// Options configures a Scorer.
type Options struct {
	Positive []string
	Negative []string
	Negators []string
	Weight   float64
	// Negation enables polarity flipping after a negator
	Negation bool
}

// Scorer is a rule-based polarity scorer over a fixed valence lexicon.
// It is safe for concurrent use; all state is read-only after construction.
type Scorer struct {
	positive map[string]struct{}
	negative map[string]struct{}
	negators map[string]struct{}
	weight   float64
	negation bool
}

// NewScorer builds the default negation-aware scorer
func NewScorer() *Scorer {
	return NewScorerWithOptions(Options{
		Positive: defaultPositive,
		Negative: defaultNegative,
		Negators: defaultNegators,
		Weight:   DefaultWeight,
		Negation: true,
	})
}

// NewFallbackScorer builds the crude word-count heuristic used when the
// learned model cannot run.
func NewFallbackScorer() *Scorer {
	return NewScorerWithOptions(Options{
		Positive: fallbackPositive,
		Negative: fallbackNegative,
		Weight:   FallbackWeight,
	})
}

// NewScorerWithOptions builds a scorer from explicit word lists
func NewScorerWithOptions(opts Options) *Scorer {
	return &Scorer{
		positive: toSet(opts.Positive),
		negative: toSet(opts.Negative),
		negators: toSet(opts.Negators),
		weight:   opts.Weight,
		negation: opts.Negation,
	}
}

// Score returns the clamped sum of per-token contributions. Empty or unknown
// text scores 0.
func (s *Scorer) Score(text string) float64 {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var total float64
	for i, tok := range tokens {
		var polarity float64
		if _, ok := s.positive[tok]; ok {
			polarity = 1
		} else if _, ok := s.negative[tok]; ok {
			polarity = -1
		} else {
			continue
		}

		if s.negation && s.negatedAt(tokens, i) {
			polarity = -polarity
		}
		total += polarity * s.weight
	}

	return Clamp(total)
}

func (s *Scorer) negatedAt(tokens []string, i int) bool {
	start := i - NegationWindow
	if start < 0 {
		start = 0
	}
	for j := start; j < i; j++ {
		if s.isNegator(tokens[j]) {
			return true
		}
	}
	return false
}

func (s *Scorer) isNegator(tok string) bool {
	if _, ok := s.negators[tok]; ok {
		return true
	}
	return strings.HasSuffix(tok, "n't")
}

// Tokenize splits on whitespace, lower-cases, and trims surrounding punctuation.
func Tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, "’", "'")
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Clamp bounds v to [-1, 1]. NaN maps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
