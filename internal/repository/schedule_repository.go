package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/slotwise/slotwise-api/internal/models"
)

// ScheduleRepository is the durable store of each provider's recurring
// weekly availability windows.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ReplaceWeekly discards the provider's previous weekly schedule and installs
// entries in a single transaction. A failure partway rolls back completely,
// leaving the prior schedule intact.
func (r *ScheduleRepository) ReplaceWeekly(ctx context.Context, providerID string, entries []models.ScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM provider_schedules WHERE provider_id = $1`, providerID); err != nil {
		return fmt.Errorf("clear weekly schedule: %w", err)
	}

	const insertQuery = `
INSERT INTO provider_schedules (id, provider_id, day_of_week, start_time, end_time, is_available, created_at)
VALUES (:id, :provider_id, :day_of_week, :start_time, :end_time, :is_available, :created_at)`

	now := time.Now().UTC()
	for i := range entries {
		entry := entries[i]
		entry.ProviderID = providerID
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, insertQuery, entry); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule replace: %w", err)
	}
	return nil
}

// GetWeekly returns the provider's persisted windows ordered by day-of-week;
// empty when none are configured.
func (r *ScheduleRepository) GetWeekly(ctx context.Context, providerID string) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, provider_id, day_of_week, start_time, end_time, is_available, created_at
FROM provider_schedules WHERE provider_id = $1 ORDER BY day_of_week ASC`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, providerID); err != nil {
		return nil, fmt.Errorf("get weekly schedule: %w", err)
	}
	return entries, nil
}

// FindByProviderAndDay loads the single window for one day-of-week.
// Returns sql.ErrNoRows when the day is not configured.
func (r *ScheduleRepository) FindByProviderAndDay(ctx context.Context, providerID string, dayOfWeek int) (*models.ScheduleEntry, error) {
	const query = `SELECT id, provider_id, day_of_week, start_time, end_time, is_available, created_at
FROM provider_schedules WHERE provider_id = $1 AND day_of_week = $2 LIMIT 1`
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, providerID, dayOfWeek); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find schedule entry: %w", err)
	}
	return &entry, nil
}
