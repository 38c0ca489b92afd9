package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

type scheduleDayFinder interface {
	FindByProviderAndDay(ctx context.Context, providerID string, dayOfWeek int) (*models.ScheduleEntry, error)
}

type bookingOccupancyReader interface {
	ListStartTimesForRange(ctx context.Context, providerID string, from, to time.Time) ([]time.Time, error)
}

type slotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// AvailabilityService derives the offerable slots for a provider and date
// from the weekly schedule and the booking ledger. The computation is a pure
// read: it can be arbitrarily stale by the time a client acts on it, so the
// ledger re-validates every reservation transactionally.
type AvailabilityService struct {
	schedules scheduleDayFinder
	bookings  bookingOccupancyReader
	cache     slotCache
	metrics   *MetricsService
	logger    *zap.Logger

	defaultSlot time.Duration
	cacheTTL    time.Duration
}

// NewAvailabilityService constructs the calculator.
func NewAvailabilityService(schedules scheduleDayFinder, bookings bookingOccupancyReader, cache slotCache, metrics *MetricsService, logger *zap.Logger, defaultSlot, cacheTTL time.Duration) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultSlot <= 0 {
		defaultSlot = time.Hour
	}
	return &AvailabilityService{
		schedules:   schedules,
		bookings:    bookings,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		defaultSlot: defaultSlot,
		cacheTTL:    cacheTTL,
	}
}

// GetAvailableSlots returns the free slot start times ("HH:MM", chronological)
// for the provider on the given date. A day with no configured window, or one
// marked unavailable, yields an empty list rather than an error.
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, providerID string, date time.Time, slotDuration time.Duration) ([]string, error) {
	if slotDuration <= 0 {
		slotDuration = s.defaultSlot
	}
	date = date.UTC().Truncate(24 * time.Hour)

	cacheKey := fmt.Sprintf("availability:%s:%s:%d", providerID, date.Format("2006-01-02"), int(slotDuration.Minutes()))
	if s.cache != nil {
		var cached []string
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.AvailabilityCacheLookup(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		s.metrics.AvailabilityCacheLookup(false)
	}

	entry, err := s.schedules.FindByProviderAndDay(ctx, providerID, int(date.Weekday()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []string{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly schedule")
	}
	if !entry.IsAvailable {
		return []string{}, nil
	}

	windowStart, err := clockOnDate(date, entry.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed schedule start time")
	}
	windowEnd, err := clockOnDate(date, entry.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "malformed schedule end time")
	}

	booked, err := s.bookings.ListStartTimesForRange(ctx, providerID, date, date.Add(24*time.Hour))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing bookings")
	}
	occupied := make(map[string]struct{}, len(booked))
	for _, start := range booked {
		occupied[start.UTC().Format(models.ClockLayout)] = struct{}{}
	}

	// The window must fully contain a slot for it to be offered; a trailing
	// partial slot is dropped.
	slots := []string{}
	for at := windowStart; !at.Add(slotDuration).After(windowEnd); at = at.Add(slotDuration) {
		label := at.Format(models.ClockLayout)
		if _, taken := occupied[label]; taken {
			continue
		}
		slots = append(slots, label)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, cacheKey, slots, s.cacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return slots, nil
}

func clockOnDate(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse(models.ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), nil
}
