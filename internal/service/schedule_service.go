package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/slotwise/slotwise-api/internal/dto"
	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

type scheduleStore interface {
	ReplaceWeekly(ctx context.Context, providerID string, entries []models.ScheduleEntry) error
	GetWeekly(ctx context.Context, providerID string) ([]models.ScheduleEntry, error)
}

// ScheduleService validates and applies weekly availability edits.
type ScheduleService struct {
	store     scheduleStore
	cache     availabilityInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs the schedule service.
func NewScheduleService(store scheduleStore, cache availabilityInvalidator, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{store: store, cache: cache, validator: validate, logger: logger}
}

// ReplaceWeekly swaps the provider's whole weekly schedule atomically. Only
// available days are persisted; unavailable days are represented by absence.
func (s *ScheduleService) ReplaceWeekly(ctx context.Context, providerID string, req dto.ReplaceSchedulesRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "schedules must list day_of_week, start_time and end_time")
	}

	seen := make(map[int]struct{}, len(req.Schedules))
	entries := make([]models.ScheduleEntry, 0, len(req.Schedules))
	for _, payload := range req.Schedules {
		day := *payload.DayOfWeek
		if _, dup := seen[day]; dup {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate schedule entry for day %d", day))
		}
		seen[day] = struct{}{}

		start, err := time.Parse(models.ClockLayout, payload.StartTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("start_time %q is not HH:MM", payload.StartTime))
		}
		end, err := time.Parse(models.ClockLayout, payload.EndTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("end_time %q is not HH:MM", payload.EndTime))
		}
		if !start.Before(end) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day %d: start_time must be before end_time", day))
		}

		if !payload.IsAvailable {
			continue
		}
		entries = append(entries, models.ScheduleEntry{
			ProviderID:  providerID,
			DayOfWeek:   day,
			StartTime:   payload.StartTime,
			EndTime:     payload.EndTime,
			IsAvailable: true,
		})
	}

	if err := s.store.ReplaceWeekly(ctx, providerID, entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace weekly schedule")
	}

	if s.cache != nil {
		pattern := fmt.Sprintf("availability:%s:*", providerID)
		if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
			s.logger.Warn("availability cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
	return nil
}

// GetWeekly returns the provider's persisted windows ordered by day-of-week.
func (s *ScheduleService) GetWeekly(ctx context.Context, providerID string) ([]dto.ScheduleEntryResponse, error) {
	entries, err := s.store.GetWeekly(ctx, providerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly schedule")
	}

	out := make([]dto.ScheduleEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, dto.ScheduleEntryResponse{
			DayOfWeek:   entry.DayOfWeek,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			IsAvailable: entry.IsAvailable,
		})
	}
	return out, nil
}
