package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
	"github.com/ternarybob/sentio/internal/services/batch"
)

const (
	JobProcessPending = "process_pending"
	JobEvaluateAlerts = "evaluate_alerts"
)

// PendingProcessor scores unscored articles
type PendingProcessor interface {
	ProcessPending(ctx context.Context, source string, limit int) (batch.BatchResult, error)
}

// EntityRecomputer rebuilds entity rollups from the full set of scored articles
type EntityRecomputer interface {
	EntityRollups(ctx context.Context, items []models.ScoredArticle) (*models.AggregateResult, error)
}

// AlertRunner evaluates the watch-list against rollups and persists alerts
type AlertRunner interface {
	Run(ctx context.Context, rollups *models.AggregateResult) ([]*models.Alert, error)
}

// Collector holds the two periodic jobs: scoring pending articles and
// re-evaluating watch-list alerts.
type Collector struct {
	processor  PendingProcessor
	source     interfaces.ArticleSource
	recomputer EntityRecomputer
	alerts     AlertRunner
	logger     arbor.ILogger
}

// NewCollector creates a collector
func NewCollector(processor PendingProcessor, source interfaces.ArticleSource, recomputer EntityRecomputer, alerts AlertRunner, logger arbor.ILogger) *Collector {
	return &Collector{
		processor:  processor,
		source:     source,
		recomputer: recomputer,
		alerts:     alerts,
		logger:     logger,
	}
}

// Register adds the jobs to the scheduler. A job with an empty schedule is
// left out.
func (c *Collector) Register(s interfaces.SchedulerService, processingSchedule, evaluationSchedule string) error {
	if processingSchedule != "" {
		if err := s.RegisterJob(JobProcessPending, processingSchedule, "Score pending articles", c.RunProcessing); err != nil {
			return err
		}
	}
	if evaluationSchedule != "" {
		if err := s.RegisterJob(JobEvaluateAlerts, evaluationSchedule, "Evaluate watch-list alerts", c.RunEvaluation); err != nil {
			return err
		}
	}
	return nil
}

// RunProcessing scores one page of pending articles from every source
func (c *Collector) RunProcessing(ctx context.Context) error {
	result, err := c.processor.ProcessPending(ctx, models.SourceAll, 0)
	if err != nil {
		return err
	}
	if len(result.Failures) > 0 {
		c.logger.Warn().
			Int("scored", len(result.Scored)).
			Int("failed", len(result.Failures)).
			Msg("Pending articles processed with failures")
	}
	return nil
}

// RunEvaluation recomputes entity sentiment over every scored article and
// runs the watch-list against it
func (c *Collector) RunEvaluation(ctx context.Context) error {
	items, err := c.source.ListScored(ctx, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to load scored articles: %w", err)
	}

	rollups, err := c.recomputer.EntityRollups(ctx, items)
	if err != nil {
		return fmt.Errorf("failed to recompute entities: %w", err)
	}

	raised, err := c.alerts.Run(ctx, rollups)
	if err != nil {
		return fmt.Errorf("failed to evaluate alerts: %w", err)
	}

	c.logger.Info().
		Int("items", len(items)).
		Int("entities", len(rollups.Entities)).
		Int("alerts", len(raised)).
		Msg("Alert evaluation completed")
	return nil
}
