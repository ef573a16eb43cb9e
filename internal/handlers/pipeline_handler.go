package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"moneymanager/internal/calendar"
	"moneymanager/internal/services"
)

// PipelineHandler exposes batch jobs to external schedulers.
type PipelineHandler struct {
	recurringService services.RecurringServicer
	now              func() time.Time
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(recurringService services.RecurringServicer) *PipelineHandler {
	return &PipelineHandler{recurringService: recurringService, now: time.Now}
}

// RunRecurring runs the recurring due-cycle sweep
// @Summary     Run recurring sweep
// @Description Materialize every due recurring template. Safe to call repeatedly for the same date.
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Param       date query string false "Sweep date (YYYY-MM-DD), defaults to today in UTC"
// @Success     200 {object} services.SweepResult "Sweep summary"
// @Failure     400 {object} ErrorResponse "Invalid date"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     500 {object} ErrorResponse "Server error"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/recurring/run [post]
func (h *PipelineHandler) RunRecurring(c *gin.Context) {
	today := calendar.UTCDate(h.now())
	date, err := optionalDateQuery(c, "date")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if date != nil {
		today = *date
	}

	result, err := h.recurringService.RunDueCycle(c.Request.Context(), today)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
