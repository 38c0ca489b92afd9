package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

type mockScheduleFinder struct {
	entries map[int]models.ScheduleEntry
	err     error
}

func (m *mockScheduleFinder) FindByProviderAndDay(ctx context.Context, providerID string, dayOfWeek int) (*models.ScheduleEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if entry, ok := m.entries[dayOfWeek]; ok {
		return &entry, nil
	}
	return nil, sql.ErrNoRows
}

type mockOccupancyReader struct {
	starts []time.Time
	err    error
}

func (m *mockOccupancyReader) ListStartTimesForRange(ctx context.Context, providerID string, from, to time.Time) ([]time.Time, error) {
	return m.starts, m.err
}

type mockSlotCache struct {
	store map[string][]string
	sets  map[string][]string
}

func (m *mockSlotCache) Get(ctx context.Context, key string, dest interface{}) error {
	if cached, ok := m.store[key]; ok {
		*(dest.(*[]string)) = cached
		return nil
	}
	return appErrors.ErrCacheMiss
}

func (m *mockSlotCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.sets == nil {
		m.sets = make(map[string][]string)
	}
	m.sets[key] = value.([]string)
	return nil
}

// 2025-06-02 is a Monday.
var testDate = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func newAvailabilitySvc(schedules *mockScheduleFinder, bookings *mockOccupancyReader, cache *mockSlotCache) *AvailabilityService {
	var slotCache slotCache
	if cache != nil {
		slotCache = cache
	}
	return NewAvailabilityService(schedules, bookings, slotCache, nil, nil, time.Hour, time.Minute)
}

func TestGetAvailableSlotsSubtractsBooked(t *testing.T) {
	schedules := &mockScheduleFinder{entries: map[int]models.ScheduleEntry{
		1: {DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
	}}
	bookings := &mockOccupancyReader{starts: []time.Time{
		time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}}

	svc := newAvailabilitySvc(schedules, bookings, nil)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, slots)
}

func TestGetAvailableSlotsNoScheduleIsEmptyNotError(t *testing.T) {
	svc := newAvailabilitySvc(&mockScheduleFinder{}, &mockOccupancyReader{}, nil)

	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestGetAvailableSlotsDayMarkedUnavailable(t *testing.T) {
	schedules := &mockScheduleFinder{entries: map[int]models.ScheduleEntry{
		1: {DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: false},
	}}

	svc := newAvailabilitySvc(schedules, &mockOccupancyReader{}, nil)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlotsDropsTrailingPartialSlot(t *testing.T) {
	schedules := &mockScheduleFinder{entries: map[int]models.ScheduleEntry{
		1: {DayOfWeek: 1, StartTime: "09:00", EndTime: "10:30", IsAvailable: true},
	}}

	svc := newAvailabilitySvc(schedules, &mockOccupancyReader{}, nil)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, slots)
}

func TestGetAvailableSlotsCustomDuration(t *testing.T) {
	schedules := &mockScheduleFinder{entries: map[int]models.ScheduleEntry{
		1: {DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00", IsAvailable: true},
	}}
	bookings := &mockOccupancyReader{starts: []time.Time{
		time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
	}}

	svc := newAvailabilitySvc(schedules, bookings, nil)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, 30*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, slots)
}

func TestGetAvailableSlotsFullyBooked(t *testing.T) {
	schedules := &mockScheduleFinder{entries: map[int]models.ScheduleEntry{
		1: {DayOfWeek: 1, StartTime: "09:00", EndTime: "11:00", IsAvailable: true},
	}}
	bookings := &mockOccupancyReader{starts: []time.Time{
		time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
	}}

	svc := newAvailabilitySvc(schedules, bookings, nil)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGetAvailableSlotsServedFromCache(t *testing.T) {
	cache := &mockSlotCache{store: map[string][]string{
		"availability:prov-1:2025-06-02:60": {"13:00", "14:00"},
	}}
	// Finder would error if consulted; the cache hit must short-circuit.
	schedules := &mockScheduleFinder{err: assert.AnError}

	svc := newAvailabilitySvc(schedules, &mockOccupancyReader{}, cache)
	slots, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, []string{"13:00", "14:00"}, slots)
}

func TestGetAvailableSlotsWritesCacheAfterCompute(t *testing.T) {
	cache := &mockSlotCache{}
	schedules := &mockScheduleFinder{entries: map[int]models.ScheduleEntry{
		1: {DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
	}}

	svc := newAvailabilitySvc(schedules, &mockOccupancyReader{}, cache)
	_, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, cache.sets["availability:prov-1:2025-06-02:60"])
}

func TestGetAvailableSlotsLedgerErrorPropagates(t *testing.T) {
	schedules := &mockScheduleFinder{entries: map[int]models.ScheduleEntry{
		1: {DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00", IsAvailable: true},
	}}
	bookings := &mockOccupancyReader{err: assert.AnError}

	svc := newAvailabilitySvc(schedules, bookings, nil)
	_, err := svc.GetAvailableSlots(context.Background(), "prov-1", testDate, time.Hour)

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
