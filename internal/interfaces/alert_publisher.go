package interfaces

import (
	"context"

	"github.com/ternarybob/sentio/internal/models"
)

// AlertPublisher delivers raised alerts to downstream consumers
type AlertPublisher interface {
	Publish(ctx context.Context, alert *models.Alert) error
	Close() error
}
