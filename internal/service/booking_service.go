package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

type bookingLedger interface {
	Create(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, bookingID, requestingProviderID string, next models.BookingStatus) (*models.Booking, error)
	ListForCustomer(ctx context.Context, customerID string) ([]models.BookingDetail, error)
	ListForProvider(ctx context.Context, providerID string) ([]models.BookingDetail, error)
}

type serviceCatalogReader interface {
	FindByID(ctx context.Context, id string) (*models.Service, error)
}

type bookingEventSink interface {
	BookingCreated(booking models.Booking)
	BookingStatusChanged(booking models.Booking)
}

type availabilityInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// BookingService orchestrates reservation creation, role-scoped listing and
// status transitions. Conflict arbitration stays with the ledger: this layer
// never trusts an earlier availability read.
type BookingService struct {
	ledger      bookingLedger
	catalog     serviceCatalogReader
	events      bookingEventSink
	cache       availabilityInvalidator
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	defaultSlot time.Duration
}

// NewBookingService constructs the orchestrator.
func NewBookingService(ledger bookingLedger, catalog serviceCatalogReader, events bookingEventSink, cache availabilityInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, defaultSlot time.Duration) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultSlot <= 0 {
		defaultSlot = time.Hour
	}
	return &BookingService{
		ledger:      ledger,
		catalog:     catalog,
		events:      events,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		defaultSlot: defaultSlot,
	}
}

// bookingTimeLayouts are the accepted wire formats for booking_start_time.
var bookingTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// CreateBooking reserves a slot for the authenticated customer. The slot
// length comes from the service's duration when the service resolves; the
// ledger does not validate that the service exists or belongs to the
// provider, so an unresolvable service falls back to the default length.
func (s *BookingService) CreateBooking(ctx context.Context, claims *models.JWTClaims, req dto.CreateBookingRequest) (*models.Booking, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service_id, provider_id and booking_start_time are required")
	}

	start, err := parseBookingTime(req.BookingStartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "booking_start_time must be a valid timestamp")
	}

	duration := s.defaultSlot
	if svc, err := s.catalog.FindByID(ctx, req.ServiceID); err == nil {
		duration = svc.Duration()
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("service lookup failed, using default duration",
			zap.String("service_id", req.ServiceID), zap.Error(err))
	}

	booking := &models.Booking{
		ServiceID:  req.ServiceID,
		CustomerID: claims.UserID,
		ProviderID: req.ProviderID,
		StartTime:  start,
		EndTime:    start.Add(duration),
		Status:     models.StatusPending,
	}

	if err := s.ledger.Create(ctx, booking); err != nil {
		if errors.Is(err, appErrors.ErrSlotTaken) {
			// Expected business outcome, surfaced as 409 and logged quietly.
			s.metrics.BookingConflict()
			s.logger.Info("booking conflict",
				zap.String("provider_id", booking.ProviderID),
				zap.Time("start_time", booking.StartTime))
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	s.metrics.BookingCreated()
	s.afterBookingWrite(ctx, *booking, true)
	return booking, nil
}

// ListBookings dispatches on the caller's role: customers see their own
// reservations, providers see their incoming ones, anything else is refused.
func (s *BookingService) ListBookings(ctx context.Context, claims *models.JWTClaims) ([]dto.BookingListItem, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	var (
		rows []models.BookingDetail
		err  error
	)
	switch claims.Role {
	case models.RoleCustomer:
		rows, err = s.ledger.ListForCustomer(ctx, claims.UserID)
	case models.RoleProvider:
		rows, err = s.ledger.ListForProvider(ctx, claims.UserID)
	default:
		return nil, appErrors.ErrUnknownRole
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}

	items := make([]dto.BookingListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.BookingListItem{
			ID:               row.ID,
			Status:           string(row.Status),
			BookingStartTime: row.StartTime,
			ServiceName:      row.ServiceName,
			Price:            row.Price,
			CustomerName:     row.CustomerName,
			ProviderName:     row.ProviderName,
		})
	}
	return items, nil
}

// UpdateStatus moves a booking through its state machine on behalf of the
// owning provider. Missing and not-owned collapse into one 404 answer.
func (s *BookingService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, bookingID, rawStatus string) (*models.Booking, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if rawStatus == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status is required")
	}
	next := models.BookingStatus(rawStatus)
	if !next.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("unknown booking status %q", rawStatus))
	}

	booking, err := s.ledger.UpdateStatus(ctx, bookingID, claims.UserID, next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrBookingNotFound
		}
		if errors.Is(err, appErrors.ErrInvalidTransition) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking status")
	}

	s.metrics.BookingStatusChanged(string(booking.Status))
	s.afterBookingWrite(ctx, *booking, false)
	return booking, nil
}

// afterBookingWrite publishes the event and drops any stale availability
// cache entries. Neither step may fail the request that triggered it.
func (s *BookingService) afterBookingWrite(ctx context.Context, booking models.Booking, created bool) {
	if s.events != nil {
		if created {
			s.events.BookingCreated(booking)
		} else {
			s.events.BookingStatusChanged(booking)
		}
	}
	if s.cache != nil {
		pattern := fmt.Sprintf("availability:%s:%s:*", booking.ProviderID, booking.StartTime.UTC().Format("2006-01-02"))
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("availability cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

func parseBookingTime(raw string) (time.Time, error) {
	for _, layout := range bookingTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", raw)
}
