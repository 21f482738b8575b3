package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAlertID(t *testing.T) {
	a, b := NewAlertID(), NewAlertID()
	assert.True(t, strings.HasPrefix(a, "alert_"))
	assert.NotEqual(t, a, b)
}
