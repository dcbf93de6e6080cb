package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
	"github.com/hokamoto/studygroup-api/internal/services"
)

// StatsHandler serves the dashboard counters.
type StatsHandler struct {
	statsService *services.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetStats recomputes and returns the dashboard counters.
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.statsService.Overview(time.Now())
	if err != nil {
		apierrors.InternalError(c)
		return
	}

	c.JSON(http.StatusOK, stats)
}
