package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/sentio/internal/interfaces"
	"github.com/ternarybob/sentio/internal/models"
)

// AlertStorage implements interfaces.AlertStorage
type AlertStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAlertStorage creates a new AlertStorage instance
func NewAlertStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AlertStorage {
	return &AlertStorage{db: db, logger: logger}
}

func (s *AlertStorage) SaveAlert(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		return fmt.Errorf("alert ID is required")
	}
	if err := s.db.Store().Upsert(alert.ID, alert); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

func (s *AlertStorage) GetAlert(ctx context.Context, id string) (*models.Alert, error) {
	var alert models.Alert
	err := s.db.Store().Get(id, &alert)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrAlertNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return &alert, nil
}

// ListAlerts returns alerts in status, newest first
func (s *AlertStorage) ListAlerts(ctx context.Context, status models.AlertStatus) ([]*models.Alert, error) {
	var alerts []models.Alert
	if err := s.db.Store().Find(&alerts, badgerhold.Where("Status").Eq(status).Index("Status")); err != nil {
		return nil, fmt.Errorf("failed to list %s alerts: %w", status, err)
	}

	result := make([]*models.Alert, len(alerts))
	for i := range alerts {
		result[i] = &alerts[i]
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
