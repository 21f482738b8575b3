package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/models"
)

type stubEngine struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (e *stubEngine) Analyze(ctx context.Context, text string, useCache bool) models.ScoredItem {
	n := e.inFlight.Add(1)
	defer e.inFlight.Add(-1)
	for {
		peak := e.maxInFlight.Load()
		if n <= peak || e.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if strings.Contains(text, "explode") {
		panic("model crashed")
	}
	time.Sleep(e.delay)
	return models.NewScoredItemFromScore(models.NormalizeTextKey(text), 0.5, 0.5, 0.5, time.Time{})
}

type recordingSink struct {
	mu     sync.Mutex
	stored map[string]models.ScoredItem
	fail   string
}

func (s *recordingSink) UpsertScore(ctx context.Context, articleID string, item models.ScoredItem) error {
	if articleID == s.fail {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		s.stored = make(map[string]models.ScoredItem)
	}
	s.stored[articleID] = item
	return nil
}

type stubSource struct {
	articles  []models.Article
	gotSource string
	gotLimit  int
}

func (s *stubSource) ListUnscored(ctx context.Context, source string, limit int) ([]models.Article, error) {
	s.gotSource, s.gotLimit = source, limit
	return s.articles, nil
}

func (s *stubSource) ListScored(ctx context.Context, since time.Time) ([]models.ScoredArticle, error) {
	return nil, nil
}

func articles(ids ...string) []models.Article {
	out := make([]models.Article, len(ids))
	for i, id := range ids {
		out[i] = models.Article{ID: id, Headline: "headline " + id}
	}
	return out
}

func TestProcess_IsolatesFailures(t *testing.T) {
	sink := &recordingSink{fail: "a4"}
	p := NewProcessor(&stubEngine{}, nil, sink, arbor.NewLogger(), Options{Workers: 2})

	input := articles("a1", "", "a3", "a4", "a5")
	input[2].Headline = "explode"

	result := p.Process(context.Background(), input)

	require.Len(t, result.Scored, 2)
	assert.Equal(t, "a1", result.Scored[0].ArticleID)
	assert.Equal(t, "a5", result.Scored[1].ArticleID)

	require.Len(t, result.Failures, 3)
	assert.Equal(t, Failure{ItemID: "", Reason: "missing item id"}, result.Failures[0])
	assert.Equal(t, "a3", result.Failures[1].ItemID)
	assert.Contains(t, result.Failures[1].Reason, "panic")
	assert.Equal(t, "a4", result.Failures[2].ItemID)
	assert.Equal(t, "disk full", result.Failures[2].Reason)

	assert.Len(t, sink.stored, 2)
}

func TestProcess_BoundsConcurrency(t *testing.T) {
	engine := &stubEngine{delay: 5 * time.Millisecond}
	p := NewProcessor(engine, nil, nil, arbor.NewLogger(), Options{Workers: 3})

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = string(rune('a'+i)) + "-id"
	}
	result := p.Process(context.Background(), articles(ids...))

	assert.Len(t, result.Scored, 20)
	assert.Empty(t, result.Failures)
	assert.LessOrEqual(t, engine.maxInFlight.Load(), int32(3))
}

func TestProcess_CancelledContext(t *testing.T) {
	p := NewProcessor(&stubEngine{}, nil, nil, arbor.NewLogger(), Options{Workers: 2, RatePerSecond: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := p.Process(ctx, articles("a1", "a2"))

	assert.Empty(t, result.Scored)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "a1", result.Failures[0].ItemID)
}

func TestProcess_Empty(t *testing.T) {
	p := NewProcessor(&stubEngine{}, nil, nil, arbor.NewLogger(), Options{})
	result := p.Process(context.Background(), nil)
	assert.Empty(t, result.Scored)
	assert.Empty(t, result.Failures)
}

func TestProcessPending(t *testing.T) {
	source := &stubSource{articles: articles("a1", "a2")}
	sink := &recordingSink{}
	p := NewProcessor(&stubEngine{}, source, sink, arbor.NewLogger(), Options{Limit: 50})

	result, err := p.ProcessPending(context.Background(), "reuters", 0)
	require.NoError(t, err)
	assert.Equal(t, "reuters", source.gotSource)
	assert.Equal(t, 50, source.gotLimit)
	assert.Len(t, result.Scored, 2)
	assert.Contains(t, sink.stored, "a2")

	_, err = NewProcessor(&stubEngine{}, nil, nil, arbor.NewLogger(), Options{}).ProcessPending(context.Background(), "", 0)
	assert.Error(t, err)
}
