package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

type serviceStore interface {
	Create(ctx context.Context, svc *models.Service) error
	List(ctx context.Context, filter dto.ServiceFilter) ([]models.ServiceListing, error)
	FindByID(ctx context.Context, id string) (*models.Service, error)
	Update(ctx context.Context, svc *models.Service) error
	Delete(ctx context.Context, id, providerID string) error
}

// CatalogService manages provider service listings.
type CatalogService struct {
	store     serviceStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(store serviceStore, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{store: store, validator: validate, logger: logger}
}

// Create adds a listing owned by the given provider.
func (s *CatalogService) Create(ctx context.Context, providerID string, req dto.CreateServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service_name is required and price must be non-negative")
	}

	svc := &models.Service{
		ID:              uuid.NewString(),
		ProviderID:      providerID,
		ServiceName:     req.ServiceName,
		Description:     req.Description,
		Category:        req.Category,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Availability:    req.Availability,
		Location:        req.Location,
		ImageURL:        req.ImageURL,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.store.Create(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service")
	}

	s.logger.Info("service created", zap.String("service_id", svc.ID), zap.String("provider_id", providerID))
	return svc, nil
}

// List returns public catalog listings matching the filter.
func (s *CatalogService) List(ctx context.Context, filter dto.ServiceFilter) ([]models.ServiceListing, error) {
	listings, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	return listings, nil
}

// Get returns one listing by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return svc, nil
}

// Update edits a listing. A listing that does not exist and a listing owned
// by someone else both come back as not found.
func (s *CatalogService) Update(ctx context.Context, id, providerID string, req dto.UpdateServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service_name is required and price must be non-negative")
	}

	svc := &models.Service{
		ID:              id,
		ProviderID:      providerID,
		ServiceName:     req.ServiceName,
		Description:     req.Description,
		Category:        req.Category,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		Availability:    req.Availability,
		Location:        req.Location,
		ImageURL:        req.ImageURL,
	}
	if err := s.store.Update(ctx, svc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service")
	}
	return svc, nil
}

// Delete removes a listing owned by the caller.
func (s *CatalogService) Delete(ctx context.Context, id, providerID string) error {
	if err := s.store.Delete(ctx, id, providerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete service")
	}
	s.logger.Info("service deleted", zap.String("service_id", id), zap.String("provider_id", providerID))
	return nil
}
