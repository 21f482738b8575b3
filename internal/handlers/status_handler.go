package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/common"
	"github.com/ternarybob/sentio/internal/interfaces"
)

// StatusHandler reports build info and scorer health
type StatusHandler struct {
	learned      interfaces.LearnedScorer
	cacheBackend string
	logger       arbor.ILogger
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(learned interfaces.LearnedScorer, cacheBackend string, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		learned:      learned,
		cacheBackend: cacheBackend,
		logger:       logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(c *gin.Context) {
	learnedState := interfaces.LearnedStateUninitialized
	if h.learned != nil {
		learnedState = h.learned.State()
	}

	c.JSON(http.StatusOK, gin.H{
		"version":       common.GetVersionInfo(),
		"learned_state": learnedState,
		"cache_backend": h.cacheBackend,
	})
}
