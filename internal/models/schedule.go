package models

import "time"

// ScheduleEntry is one weekly availability window: at most one active row
// per provider per day-of-week (0 = Sunday .. 6 = Saturday). Days without a
// row are unavailable; the whole weekly set is replaced atomically on edit.
type ScheduleEntry struct {
	ID          string    `db:"id" json:"id"`
	ProviderID  string    `db:"provider_id" json:"provider_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartTime   string    `db:"start_time" json:"start_time"` // "HH:MM", 24h
	EndTime     string    `db:"end_time" json:"end_time"`     // "HH:MM", 24h
	IsAvailable bool      `db:"is_available" json:"is_available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ClockLayout is the wire and storage format for times of day.
const ClockLayout = "15:04"
