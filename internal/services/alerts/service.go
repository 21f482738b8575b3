// -----------------------------------------------------------------------
// Alert lifecycle: watch-list management, evaluation runs and transitions
// -----------------------------------------------------------------------

package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/metrics"
	"github.com/ternarybob/sentio/internal/models"
)

// Service owns the watch-list and the alert lifecycle.
type Service struct {
	watchlist        interfaces.WatchlistStorage
	alerts           interfaces.AlertStorage
	publisher        interfaces.AlertPublisher
	evaluator        *Evaluator
	clock            clockwork.Clock
	logger           arbor.ILogger
	defaultThreshold int

	mu sync.Mutex
}

// NewService creates the alert service. publisher may be nil.
func NewService(
	watchlist interfaces.WatchlistStorage,
	alertStorage interfaces.AlertStorage,
	publisher interfaces.AlertPublisher,
	clock clockwork.Clock,
	defaultThreshold int,
	logger arbor.ILogger,
) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if defaultThreshold == 0 {
		defaultThreshold = models.DefaultAlertThreshold
	}
	return &Service{
		watchlist:        watchlist,
		alerts:           alertStorage,
		publisher:        publisher,
		evaluator:        NewEvaluator(clock, logger),
		clock:            clock,
		logger:           logger,
		defaultThreshold: defaultThreshold,
	}
}

// AddEntry adds name to the watch-list with alerts enabled. A zero threshold
// takes the configured default. Names are unique case-insensitively.
func (s *Service) AddEntry(ctx context.Context, name string, threshold int) (*models.WatchlistEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("watch-list name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.watchlist.GetEntry(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWatchlistEntryExists, name)
	} else if !errors.Is(err, models.ErrWatchlistEntryNotFound) {
		return nil, err
	}

	entry := models.NewWatchlistEntry(name, s.clock.Now())
	if threshold != 0 {
		entry.Threshold = threshold
	} else {
		entry.Threshold = s.defaultThreshold
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid watch-list entry: %w", err)
	}

	if err := s.watchlist.SaveEntry(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info().Str("entity", name).Int("threshold", entry.Threshold).Msg("Added watch-list entry")
	return entry, nil
}

func (s *Service) RemoveEntry(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.watchlist.GetEntry(ctx, name); err != nil {
		return err
	}
	return s.watchlist.DeleteEntry(ctx, name)
}

// SetAlertsEnabled toggles alerting for an entry
func (s *Service) SetAlertsEnabled(ctx context.Context, name string, enabled bool) (*models.WatchlistEntry, error) {
	return s.updateEntry(ctx, name, func(e *models.WatchlistEntry) error {
		e.AlertEnabled = enabled
		return nil
	})
}

// SetThreshold changes an entry's threshold; it must be within 10..50
func (s *Service) SetThreshold(ctx context.Context, name string, threshold int) (*models.WatchlistEntry, error) {
	return s.updateEntry(ctx, name, func(e *models.WatchlistEntry) error {
		e.Threshold = threshold
		return e.Validate()
	})
}

func (s *Service) updateEntry(ctx context.Context, name string, mutate func(*models.WatchlistEntry) error) (*models.WatchlistEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.watchlist.GetEntry(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := mutate(entry); err != nil {
		return nil, fmt.Errorf("invalid watch-list entry: %w", err)
	}
	entry.UpdatedAt = s.clock.Now()

	if err := s.watchlist.SaveEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Entries lists the watch-list
func (s *Service) Entries(ctx context.Context) ([]*models.WatchlistEntry, error) {
	return s.watchlist.ListEntries(ctx)
}

// Run evaluates the watch-list against rollups, persists updated entries and
// new alerts, and publishes them. An alert is not raised again for an entity
// and type while an earlier one is still active.
func (s *Service) Run(ctx context.Context, rollups *models.AggregateResult) ([]*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.watchlist.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch-list: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	active, err := s.alerts.ListAlerts(ctx, models.AlertStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active alerts: %w", err)
	}
	open := make(map[string]struct{}, len(active))
	for _, a := range active {
		open[dedupeKey(a.Entity, a.Type)] = struct{}{}
	}

	candidates := s.evaluator.Evaluate(entries, rollups)

	for _, entry := range entries {
		if err := s.watchlist.SaveEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to save watch-list entry %s: %w", entry.Name, err)
		}
	}

	var raised []*models.Alert
	for i := range candidates {
		alert := &candidates[i]
		key := dedupeKey(alert.Entity, alert.Type)
		if _, dup := open[key]; dup {
			continue
		}
		open[key] = struct{}{}

		if err := s.alerts.SaveAlert(ctx, alert); err != nil {
			return raised, fmt.Errorf("failed to save alert for %s: %w", alert.Entity, err)
		}
		metrics.AlertsRaised.WithLabelValues(string(alert.Type), string(alert.Priority)).Inc()

		s.logger.Info().
			Str("alert_id", alert.ID).
			Str("entity", alert.Entity).
			Str("type", string(alert.Type)).
			Str("priority", string(alert.Priority)).
			Float64("change", alert.ChangeMagnitude).
			Msg("Sentiment alert raised")

		s.publish(ctx, alert)
		raised = append(raised, alert)
	}

	return raised, nil
}

func (s *Service) publish(ctx context.Context, alert *models.Alert) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, alert); err != nil {
		metrics.AlertPublishErrors.Inc()
		s.logger.Warn().Err(err).Str("alert_id", alert.ID).Msg("Failed to publish alert")
	}
}

// Active returns active alerts, newest first
func (s *Service) Active(ctx context.Context) ([]*models.Alert, error) {
	return s.alerts.ListAlerts(ctx, models.AlertStatusActive)
}

// History returns dismissed and resolved alerts, most recently closed first
func (s *Service) History(ctx context.Context) ([]*models.Alert, error) {
	dismissed, err := s.alerts.ListAlerts(ctx, models.AlertStatusDismissed)
	if err != nil {
		return nil, err
	}
	resolved, err := s.alerts.ListAlerts(ctx, models.AlertStatusResolved)
	if err != nil {
		return nil, err
	}

	history := append(dismissed, resolved...)
	sort.SliceStable(history, func(i, j int) bool {
		return closedAt(history[i]).After(closedAt(history[j]))
	})
	return history, nil
}

// Dismiss moves an active alert into history. Dismissal is terminal.
func (s *Service) Dismiss(ctx context.Context, id string) (*models.Alert, error) {
	return s.transition(ctx, id, models.AlertStatusDismissed)
}

// Resolve closes an active alert as resolved
func (s *Service) Resolve(ctx context.Context, id string) (*models.Alert, error) {
	return s.transition(ctx, id, models.AlertStatusResolved)
}

func (s *Service) transition(ctx context.Context, id string, status models.AlertStatus) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	alert, err := s.alerts.GetAlert(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := alert.TransitionTo(status, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.alerts.SaveAlert(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info().Str("alert_id", id).Str("status", string(status)).Msg("Alert closed")
	return alert, nil
}

func dedupeKey(entity string, t models.AlertType) string {
	return models.NormalizeTextKey(entity) + "|" + string(t)
}

func closedAt(a *models.Alert) time.Time {
	if a.ClosedAt != nil {
		return *a.ClosedAt
	}
	return a.CreatedAt
}
