package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jime0083/BatsuGaku/apperr"
	"github.com/jime0083/BatsuGaku/jobs"
)

// RunDailyJob triggers the daily skip evaluation. Called by the external
// scheduler just after local midnight; safe to re-deliver.
func (h *Handler) RunDailyJob(c *gin.Context) {
	if err := h.Evaluator.RunDaily(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RunWarningJob triggers one of the pre-deadline warning pushes.
func (h *Handler) RunWarningJob(c *gin.Context) {
	kind := c.Query("kind")
	if kind != jobs.WarningFirst && kind != jobs.WarningLast {
		respondError(c, fmt.Errorf("%w: kind must be %q or %q", apperr.ErrBadRequest, jobs.WarningFirst, jobs.WarningLast))
		return
	}

	if err := h.Evaluator.RunWarning(c.Request.Context(), kind); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HealthCheck is the unauthenticated liveness probe.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
