package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
	"github.com/slotwise/slotwise-api/pkg/response"
)

const dateLayout = "2006-01-02"

type availabilityProvider interface {
	GetAvailableSlots(ctx context.Context, providerID string, date time.Time, slotDuration time.Duration) ([]string, error)
}

type serviceResolver interface {
	Get(ctx context.Context, id string) (*models.Service, error)
}

// AvailabilityHandler exposes the slot availability endpoint.
type AvailabilityHandler struct {
	availability availabilityProvider
	catalog      serviceResolver
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability availabilityProvider, catalog serviceResolver) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, catalog: catalog}
}

// Get godoc
// @Summary Get available slots for a provider on a date
// @Tags Availability
// @Produce json
// @Param provider_id path string true "Provider id"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param service_id query string false "Service whose duration partitions the day"
// @Success 200 {object} dto.AvailabilityResponse
// @Router /availability/{provider_id}/{date} [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	providerID := c.Param("provider_id")
	date, err := time.Parse(dateLayout, c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	// The slot length follows the requested service when one is named;
	// otherwise the configured default applies.
	var slotDuration time.Duration
	if serviceID := c.Query("service_id"); serviceID != "" {
		if svc, err := h.catalog.Get(c.Request.Context(), serviceID); err == nil {
			slotDuration = svc.Duration()
		}
	}

	slots, err := h.availability.GetAvailableSlots(c.Request.Context(), providerID, date, slotDuration)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AvailabilityResponse{AvailableSlots: slots})
}
