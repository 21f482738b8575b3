package common

import (
	"github.com/google/uuid"
)

// NewAlertID generates a unique alert ID with the "alert_" prefix
// Format: alert_<uuid>
func NewAlertID() string {
	return "alert_" + uuid.New().String()
}
