package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
	"github.com/slotwise/slotwise-api/pkg/response"
)

type catalogManager interface {
	Create(ctx context.Context, providerID string, req dto.CreateServiceRequest) (*models.Service, error)
	List(ctx context.Context, filter dto.ServiceFilter) ([]models.ServiceListing, error)
	Get(ctx context.Context, id string) (*models.Service, error)
	Update(ctx context.Context, id, providerID string, req dto.UpdateServiceRequest) (*models.Service, error)
	Delete(ctx context.Context, id, providerID string) error
}

// ServiceHandler exposes the provider service catalog.
type ServiceHandler struct {
	catalog catalogManager
}

// NewServiceHandler constructs ServiceHandler.
func NewServiceHandler(catalog catalogManager) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// Create godoc
// @Summary Add a service listing
// @Tags Services
// @Accept json
// @Produce json
// @Param payload body dto.CreateServiceRequest true "Service payload"
// @Success 201 {object} map[string]string
// @Router /services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	svc, err := h.catalog.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{
		"message": "Service added successfully",
		"service": svc,
	})
}

// List godoc
// @Summary List service listings
// @Tags Services
// @Produce json
// @Param category query string false "Filter by category"
// @Param keyword query string false "Match name or description"
// @Param location query string false "Filter by location"
// @Param provider_id query string false "Filter by provider"
// @Success 200 {array} models.ServiceListing
// @Router /services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	filter := dto.ServiceFilter{
		Category:   c.Query("category"),
		Keyword:    c.Query("keyword"),
		Location:   c.Query("location"),
		ProviderID: c.Query("provider_id"),
	}

	listings, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, listings)
}

// Get godoc
// @Summary Get one service listing
// @Tags Services
// @Produce json
// @Param id path string true "Service id"
// @Success 200 {object} models.Service
// @Router /services/{id} [get]
func (h *ServiceHandler) Get(c *gin.Context) {
	svc, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, svc)
}

// Update godoc
// @Summary Update an owned service listing
// @Tags Services
// @Accept json
// @Produce json
// @Param id path string true "Service id"
// @Param payload body dto.UpdateServiceRequest true "Service payload"
// @Success 200 {object} map[string]string
// @Router /services/{id} [put]
func (h *ServiceHandler) Update(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	svc, err := h.catalog.Update(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"message": "Service updated successfully",
		"service": svc,
	})
}

// Delete godoc
// @Summary Delete an owned service listing
// @Tags Services
// @Produce json
// @Param id path string true "Service id"
// @Success 200 {object} map[string]string
// @Router /services/{id} [delete]
func (h *ServiceHandler) Delete(c *gin.Context) {
	claims := currentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Service deleted successfully")
}
