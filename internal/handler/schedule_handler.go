package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/slotwise-api/internal/dto"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
	"github.com/slotwise/slotwise-api/pkg/response"
)

type scheduleManager interface {
	ReplaceWeekly(ctx context.Context, providerID string, req dto.ReplaceSchedulesRequest) error
	GetWeekly(ctx context.Context, providerID string) ([]dto.ScheduleEntryResponse, error)
}

// ScheduleHandler exposes the weekly schedule endpoints.
type ScheduleHandler struct {
	schedules scheduleManager
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules scheduleManager) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// Replace godoc
// @Summary Replace the provider's weekly schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceSchedulesRequest true "Full weekly schedule"
// @Success 201 {object} map[string]string
// @Router /schedules [post]
func (h *ScheduleHandler) Replace(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ReplaceSchedulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	if err := h.schedules.ReplaceWeekly(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Availability set successfully")
}

// Get godoc
// @Summary Get the provider's weekly schedule
// @Tags Schedules
// @Produce json
// @Success 200 {array} dto.ScheduleEntryResponse
// @Router /schedules [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.schedules.GetWeekly(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}
