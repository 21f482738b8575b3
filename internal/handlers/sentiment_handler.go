package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
	"github.com/ternarybob/sentio/internal/services/batch"
)

// Aggregator rolls scored articles up under a filter
type Aggregator interface {
	Aggregate(ctx context.Context, items []models.ScoredArticle, filter models.Filter) (*models.AggregateResult, error)
}

// PendingProcessor scores unscored articles on demand
type PendingProcessor interface {
	ProcessPending(ctx context.Context, source string, limit int) (batch.BatchResult, error)
}

// SentimentHandler serves scoring, aggregation and batch endpoints
type SentimentHandler struct {
	engine     interfaces.FusionEngine
	aggregator Aggregator
	source     interfaces.ArticleSource
	processor  PendingProcessor
	clock      clockwork.Clock
	logger     arbor.ILogger
}

// NewSentimentHandler creates a new sentiment handler
func NewSentimentHandler(engine interfaces.FusionEngine, aggregator Aggregator, source interfaces.ArticleSource, processor PendingProcessor, clock clockwork.Clock, logger arbor.ILogger) *SentimentHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SentimentHandler{
		engine:     engine,
		aggregator: aggregator,
		source:     source,
		processor:  processor,
		clock:      clock,
		logger:     logger,
	}
}

// analyzeRequest requires the text field but accepts an empty string, which
// scores as a neutral zero-confidence item.
type analyzeRequest struct {
	Text     *string `json:"text" binding:"required"`
	UseCache *bool   `json:"use_cache"`
}

type analyzeResponse struct {
	models.ScoredItem
	Category     models.Category `json:"category"`
	Inconclusive bool            `json:"inconclusive"`
}

// AnalyzeHandler handles POST /api/analyze
func (h *SentimentHandler) AnalyzeHandler(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, http.StatusBadRequest, "text is required")
		return
	}

	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}

	item := h.engine.Analyze(c.Request.Context(), *req.Text, useCache)
	c.JSON(http.StatusOK, analyzeResponse{
		ScoredItem:   item,
		Category:     item.Category(),
		Inconclusive: item.Inconclusive(),
	})
}

// AggregateHandler handles GET /api/aggregate. Query parameters: range
// (24h, 7d or 30d, default 7d), source, search, categories (comma separated)
// and top (limit on each rollup).
func (h *SentimentHandler) AggregateHandler(c *gin.Context) {
	filter := models.Filter{
		DateRange: models.DateRange(c.DefaultQuery("range", string(models.DateRange7d))),
		Source:    c.Query("source"),
		Search:    c.Query("search"),
	}
	for _, category := range QueryList(c, "categories") {
		filter.Categories = append(filter.Categories, models.Category(strings.ToLower(category)))
	}

	// Reject before touching storage
	if err := filter.Validate(); err != nil {
		WriteFailure(c, err)
		return
	}

	ctx := c.Request.Context()
	items, err := h.source.ListScored(ctx, h.clock.Now().Add(-filter.DateRange.Duration()))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load scored articles")
		WriteFailure(c, err)
		return
	}

	result, err := h.aggregator.Aggregate(ctx, items, filter)
	if err != nil {
		WriteFailure(c, err)
		return
	}

	if top := QueryInt(c, "top", 0); top > 0 {
		result.Entities = result.TopEntities(top)
		result.Sources = result.TopSources(top)
		result.Countries = result.TopCountries(top)
	}

	c.JSON(http.StatusOK, result)
}

// ProcessHandler handles POST /api/process, scoring one page of pending
// articles. Per-item failures are reported in the body, not as an error.
func (h *SentimentHandler) ProcessHandler(c *gin.Context) {
	result, err := h.processor.ProcessPending(c.Request.Context(), c.DefaultQuery("source", models.SourceAll), QueryInt(c, "limit", 0))
	if err != nil {
		WriteFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
