package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ternarybob/sentio/internal/interfaces"
)

// SchedulerHandler exposes the background jobs
type SchedulerHandler struct {
	schedulerService interfaces.SchedulerService
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(schedulerService interfaces.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{schedulerService: schedulerService}
}

// ListJobsHandler handles GET /api/jobs
func (h *SchedulerHandler) ListJobsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.schedulerService.GetAllJobStatuses()})
}

// TriggerJobHandler handles POST /api/jobs/:name/trigger
func (h *SchedulerHandler) TriggerJobHandler(c *gin.Context) {
	name := c.Param("name")
	if _, err := h.schedulerService.GetJobStatus(name); err != nil {
		WriteError(c, http.StatusNotFound, err.Error())
		return
	}
	if err := h.schedulerService.TriggerJob(name); err != nil {
		WriteError(c, http.StatusConflict, err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started", "job": name})
}
