package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

// fakeLedger serialises writes the way the row lock and the interval
// exclusion constraint do: for one provider, the first claim on any
// overlapping [start, end) interval wins and every later claim conflicts.
type fakeLedger struct {
	mu       sync.Mutex
	claimed  map[string][]models.Booking
	bookings map[string]models.Booking
	customer []models.BookingDetail
	provider []models.BookingDetail
	listErr  error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		claimed:  make(map[string][]models.Booking),
		bookings: make(map[string]models.Booking),
	}
}

func (f *fakeLedger) Create(ctx context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, held := range f.claimed[booking.ProviderID] {
		if booking.StartTime.Before(held.EndTime) && booking.EndTime.After(held.StartTime) {
			return appErrors.ErrSlotTaken
		}
	}
	booking.ID = uuid.NewString()
	f.claimed[booking.ProviderID] = append(f.claimed[booking.ProviderID], *booking)
	f.bookings[booking.ID] = *booking
	return nil
}

func (f *fakeLedger) UpdateStatus(ctx context.Context, bookingID, requestingProviderID string, next models.BookingStatus) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.ProviderID != requestingProviderID {
		return nil, sql.ErrNoRows
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, appErrors.ErrInvalidTransition
	}
	booking.Status = next
	f.bookings[bookingID] = booking
	return &booking, nil
}

func (f *fakeLedger) ListForCustomer(ctx context.Context, customerID string) ([]models.BookingDetail, error) {
	return f.customer, f.listErr
}

func (f *fakeLedger) ListForProvider(ctx context.Context, providerID string) ([]models.BookingDetail, error) {
	return f.provider, f.listErr
}

type fakeCatalog struct {
	services map[string]models.Service
}

func (f *fakeCatalog) FindByID(ctx context.Context, id string) (*models.Service, error) {
	if svc, ok := f.services[id]; ok {
		return &svc, nil
	}
	return nil, sql.ErrNoRows
}

type recordingSink struct {
	mu      sync.Mutex
	created []models.Booking
	changed []models.Booking
}

func (r *recordingSink) BookingCreated(b models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, b)
}

func (r *recordingSink) BookingStatusChanged(b models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = append(r.changed, b)
}

type recordingInvalidator struct {
	mu       sync.Mutex
	patterns []string
}

func (r *recordingInvalidator) DeleteByPattern(ctx context.Context, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns = append(r.patterns, pattern)
	return nil
}

func customerClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleCustomer}
}

func providerClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleProvider}
}

func validCreateReq() dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		ServiceID:        "svc-1",
		ProviderID:       "prov-1",
		BookingStartTime: "2025-06-02T10:00:00Z",
	}
}

func TestCreateBookingHappyPath(t *testing.T) {
	ledger := newFakeLedger()
	catalog := &fakeCatalog{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", DurationMinutes: 90},
	}}
	sink := &recordingSink{}
	cache := &recordingInvalidator{}
	svc := NewBookingService(ledger, catalog, sink, cache, nil, nil, nil, time.Hour)

	booking, err := svc.CreateBooking(context.Background(), customerClaims("cust-1"), validCreateReq())

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, booking.Status)
	assert.Equal(t, "cust-1", booking.CustomerID)
	assert.Equal(t, 90*time.Minute, booking.EndTime.Sub(booking.StartTime))
	require.Len(t, sink.created, 1)
	require.Len(t, cache.patterns, 1)
	assert.Equal(t, "availability:prov-1:2025-06-02:*", cache.patterns[0])
}

func TestCreateBookingUnknownServiceFallsBackToDefaultDuration(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewBookingService(ledger, &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	booking, err := svc.CreateBooking(context.Background(), customerClaims("cust-1"), validCreateReq())

	require.NoError(t, err)
	assert.Equal(t, time.Hour, booking.EndTime.Sub(booking.StartTime))
}

func TestCreateBookingMissingFields(t *testing.T) {
	svc := NewBookingService(newFakeLedger(), &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	_, err := svc.CreateBooking(context.Background(), customerClaims("cust-1"), dto.CreateBookingRequest{ServiceID: "svc-1"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateBookingMalformedTimestamp(t *testing.T) {
	svc := NewBookingService(newFakeLedger(), &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	req := validCreateReq()
	req.BookingStartTime = "next tuesday"
	_, err := svc.CreateBooking(context.Background(), customerClaims("cust-1"), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateBookingNoClaims(t *testing.T) {
	svc := NewBookingService(newFakeLedger(), &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	_, err := svc.CreateBooking(context.Background(), nil, validCreateReq())

	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestCreateBookingConflictPassesThrough(t *testing.T) {
	ledger := newFakeLedger()
	sink := &recordingSink{}
	svc := NewBookingService(ledger, &fakeCatalog{}, sink, nil, nil, nil, nil, time.Hour)

	_, err := svc.CreateBooking(context.Background(), customerClaims("cust-1"), validCreateReq())
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), customerClaims("cust-2"), validCreateReq())
	assert.ErrorIs(t, err, appErrors.ErrSlotTaken)
	assert.Len(t, sink.created, 1)
}

func TestCreateBookingConcurrentSameSlotOneWinner(t *testing.T) {
	const contenders = 20
	ledger := newFakeLedger()
	svc := NewBookingService(ledger, &fakeCatalog{}, &recordingSink{}, &recordingInvalidator{}, nil, nil, nil, time.Hour)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), customerClaims(fmt.Sprintf("cust-%d", i)), validCreateReq())
		}(i)
	}
	wg.Wait()

	winners, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case appErrors.FromError(err).Code == appErrors.ErrSlotTaken.Code:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, contenders-1, conflicts)
	assert.Len(t, ledger.bookings, 1)
}

func TestCreateBookingConcurrentOverlappingIntervalsOneWinner(t *testing.T) {
	// A 90-minute booking at 10:00 and another attempt at 10:30 share no
	// start time but overlap; only one may land in the ledger.
	ledger := newFakeLedger()
	catalog := &fakeCatalog{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", DurationMinutes: 90},
	}}
	svc := NewBookingService(ledger, catalog, &recordingSink{}, &recordingInvalidator{}, nil, nil, nil, time.Hour)

	early := validCreateReq()
	late := validCreateReq()
	late.BookingStartTime = "2025-06-02T10:30:00Z"

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, req := range []dto.CreateBookingRequest{early, late} {
		wg.Add(1)
		go func(i int, req dto.CreateBookingRequest) {
			defer wg.Done()
			_, errs[i] = svc.CreateBooking(context.Background(), customerClaims(fmt.Sprintf("cust-%d", i)), req)
		}(i, req)
	}
	wg.Wait()

	winners, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case appErrors.FromError(err).Code == appErrors.ErrSlotTaken.Code:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, conflicts)
	assert.Len(t, ledger.bookings, 1)
}

func TestListBookingsDispatchesOnRole(t *testing.T) {
	ledger := newFakeLedger()
	ledger.customer = []models.BookingDetail{{
		Booking:      models.Booking{ID: "b1", Status: models.StatusPending},
		ServiceName:  "Haircut",
		ProviderName: "Pat",
	}}
	ledger.provider = []models.BookingDetail{{
		Booking:      models.Booking{ID: "b2", Status: models.StatusConfirmed},
		ServiceName:  "Haircut",
		CustomerName: "Sam",
	}}
	svc := NewBookingService(ledger, &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	asCustomer, err := svc.ListBookings(context.Background(), customerClaims("cust-1"))
	require.NoError(t, err)
	require.Len(t, asCustomer, 1)
	assert.Equal(t, "b1", asCustomer[0].ID)
	assert.Equal(t, "Pat", asCustomer[0].ProviderName)

	asProvider, err := svc.ListBookings(context.Background(), providerClaims("prov-1"))
	require.NoError(t, err)
	require.Len(t, asProvider, 1)
	assert.Equal(t, "b2", asProvider[0].ID)
	assert.Equal(t, "Sam", asProvider[0].CustomerName)
}

func TestListBookingsUnknownRole(t *testing.T) {
	svc := NewBookingService(newFakeLedger(), &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	_, err := svc.ListBookings(context.Background(), &models.JWTClaims{UserID: "u1", Role: "ADMIN"})

	assert.ErrorIs(t, err, appErrors.ErrUnknownRole)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	ledger := newFakeLedger()
	ledger.bookings["b1"] = models.Booking{ID: "b1", ProviderID: "prov-1", Status: models.StatusPending, StartTime: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)}
	sink := &recordingSink{}
	cache := &recordingInvalidator{}
	svc := NewBookingService(ledger, &fakeCatalog{}, sink, cache, nil, nil, nil, time.Hour)

	booking, err := svc.UpdateStatus(context.Background(), providerClaims("prov-1"), "b1", "Confirmed")

	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, booking.Status)
	assert.Len(t, sink.changed, 1)
	assert.Len(t, cache.patterns, 1)
}

func TestUpdateStatusNotOwnedAnswersNotFound(t *testing.T) {
	ledger := newFakeLedger()
	ledger.bookings["b1"] = models.Booking{ID: "b1", ProviderID: "prov-1", Status: models.StatusPending}
	svc := NewBookingService(ledger, &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	_, err := svc.UpdateStatus(context.Background(), providerClaims("prov-2"), "b1", "Confirmed")

	assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	ledger := newFakeLedger()
	ledger.bookings["b1"] = models.Booking{ID: "b1", ProviderID: "prov-1", Status: models.StatusRejected}
	svc := NewBookingService(ledger, &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	_, err := svc.UpdateStatus(context.Background(), providerClaims("prov-1"), "b1", "Completed")

	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestUpdateStatusUnknownStatusString(t *testing.T) {
	ledger := newFakeLedger()
	ledger.bookings["b1"] = models.Booking{ID: "b1", ProviderID: "prov-1", Status: models.StatusPending}
	svc := NewBookingService(ledger, &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	_, err := svc.UpdateStatus(context.Background(), providerClaims("prov-1"), "b1", "Archived")

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErr.Code)
	// The row itself is untouched.
	assert.Equal(t, models.StatusPending, ledger.bookings["b1"].Status)
}

func TestUpdateStatusMissingStatus(t *testing.T) {
	svc := NewBookingService(newFakeLedger(), &fakeCatalog{}, nil, nil, nil, nil, nil, time.Hour)

	_, err := svc.UpdateStatus(context.Background(), providerClaims("prov-1"), "b1", "")

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
