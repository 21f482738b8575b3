package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sentio/internal/models"
	"github.com/ternarybob/sentio/internal/services/alerts"
)

// AlertsHandler serves alert lifecycle and watch-list endpoints
type AlertsHandler struct {
	service *alerts.Service
	logger  arbor.ILogger
}

// NewAlertsHandler creates a new alerts handler
func NewAlertsHandler(service *alerts.Service, logger arbor.ILogger) *AlertsHandler {
	return &AlertsHandler{service: service, logger: logger}
}

// ListAlertsHandler handles GET /api/alerts?status=active|history
func (h *AlertsHandler) ListAlertsHandler(c *gin.Context) {
	var (
		list []*models.Alert
		err  error
	)

	switch c.DefaultQuery("status", "active") {
	case "active":
		list, err = h.service.Active(c.Request.Context())
	case "history":
		list, err = h.service.History(c.Request.Context())
	default:
		WriteError(c, http.StatusBadRequest, "status must be active or history")
		return
	}
	if err != nil {
		WriteFailure(c, err)
		return
	}

	if list == nil {
		list = []*models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": list, "count": len(list)})
}

// DismissHandler handles POST /api/alerts/:id/dismiss
func (h *AlertsHandler) DismissHandler(c *gin.Context) {
	alert, err := h.service.Dismiss(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// ResolveHandler handles POST /api/alerts/:id/resolve
func (h *AlertsHandler) ResolveHandler(c *gin.Context) {
	alert, err := h.service.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

type watchlistRequest struct {
	Name      string `json:"name" binding:"required"`
	Threshold int    `json:"threshold"`
}

type watchlistUpdate struct {
	AlertEnabled *bool `json:"alert_enabled"`
	Threshold    *int  `json:"threshold"`
}

// ListWatchlistHandler handles GET /api/watchlist
func (h *AlertsHandler) ListWatchlistHandler(c *gin.Context) {
	entries, err := h.service.Entries(c.Request.Context())
	if err != nil {
		WriteFailure(c, err)
		return
	}
	if entries == nil {
		entries = []*models.WatchlistEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddWatchlistHandler handles POST /api/watchlist
func (h *AlertsHandler) AddWatchlistHandler(c *gin.Context) {
	var req watchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, http.StatusBadRequest, "name is required")
		return
	}

	entry, err := h.service.AddEntry(c.Request.Context(), req.Name, req.Threshold)
	if err != nil {
		WriteFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateWatchlistHandler handles PATCH /api/watchlist/:name
func (h *AlertsHandler) UpdateWatchlistHandler(c *gin.Context) {
	var req watchlistUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := c.Request.Context()
	name := c.Param("name")
	var entry *models.WatchlistEntry
	var err error

	if req.Threshold != nil {
		if entry, err = h.service.SetThreshold(ctx, name, *req.Threshold); err != nil {
			WriteFailure(c, err)
			return
		}
	}
	if req.AlertEnabled != nil {
		if entry, err = h.service.SetAlertsEnabled(ctx, name, *req.AlertEnabled); err != nil {
			WriteFailure(c, err)
			return
		}
	}
	if entry == nil {
		WriteError(c, http.StatusBadRequest, "nothing to update")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RemoveWatchlistHandler handles DELETE /api/watchlist/:name
func (h *AlertsHandler) RemoveWatchlistHandler(c *gin.Context) {
	if err := h.service.RemoveEntry(c.Request.Context(), c.Param("name")); err != nil {
		WriteFailure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
