package fusion

import (
	"errors"
	"fmt"
	"math"
)

var errNotFinite = errors.New("score is not a finite number")

// ScorerResult is the outcome of one scorer call within an analysis:
// either Ok with a score in [-1, 1] or failed with a reason.
type ScorerResult struct {
	Score float64
	Err   error
}

// Ok wraps a successful score, clamping it into [-1, 1]. Non-finite scores
// become failures.
func Ok(score float64) ScorerResult {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Failed(errNotFinite)
	}
	return ScorerResult{Score: math.Max(-1, math.Min(1, score))}
}

// Failed wraps a scorer failure
func Failed(err error) ScorerResult {
	if err == nil {
		err = errors.New("unknown scorer failure")
	}
	return ScorerResult{Err: err}
}

func (r ScorerResult) IsOk() bool { return r.Err == nil }

// Value is the score contributed to fusion. Failures contribute 0.
func (r ScorerResult) Value() float64 {
	if r.Err != nil {
		return 0
	}
	return r.Score
}

func recoverResult(name string, result *ScorerResult) {
	if r := recover(); r != nil {
		*result = Failed(fmt.Errorf("%s scorer panicked: %v", name, r))
	}
}
