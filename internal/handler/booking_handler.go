package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
	"github.com/slotwise/slotwise-api/internal/service"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
	"github.com/slotwise/slotwise-api/pkg/response"
)

type bookingOrchestrator interface {
	CreateBooking(ctx context.Context, claims *models.JWTClaims, req dto.CreateBookingRequest) (*models.Booking, error)
	ListBookings(ctx context.Context, claims *models.JWTClaims) ([]dto.BookingListItem, error)
	UpdateStatus(ctx context.Context, claims *models.JWTClaims, bookingID, rawStatus string) (*models.Booking, error)
}

type bookingExporter interface {
	ExportBookings(ctx context.Context, providerID, format string) (*service.ExportResult, error)
}

// BookingHandler exposes the reservation endpoints.
type BookingHandler struct {
	bookings bookingOrchestrator
	exports  bookingExporter
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings bookingOrchestrator, exports bookingExporter) *BookingHandler {
	return &BookingHandler{bookings: bookings, exports: exports}
}

// Create godoc
// @Summary Reserve a slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.CreateBookingRequest true "Booking payload"
// @Success 201 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	booking, err := h.bookings.CreateBooking(c.Request.Context(), currentClaims(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// List godoc
// @Summary List the caller's bookings
// @Tags Bookings
// @Produce json
// @Success 200 {array} dto.BookingListItem
// @Failure 403 {object} map[string]string
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	items, err := h.bookings.ListBookings(c.Request.Context(), currentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// UpdateStatus godoc
// @Summary Transition a booking's status
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param payload body dto.UpdateBookingStatusRequest true "Target status"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/status [put]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status is required"))
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), currentClaims(c), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("Booking %s successfully", booking.Status),
		"booking": booking,
	})
}

// Export godoc
// @Summary Download the provider's bookings as CSV or PDF
// @Tags Bookings
// @Produce octet-stream
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /bookings/export [get]
func (h *BookingHandler) Export(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.exports.ExportBookings(c.Request.Context(), claims.UserID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
