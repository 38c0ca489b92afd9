package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/slotwise/slotwise-api/internal/models"
	appErrors "github.com/slotwise/slotwise-api/pkg/errors"
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

// BookingRepository is the authoritative, transactional booking ledger: the
// sole writer of booking rows and the sole arbiter of slot occupancy.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a reservation inside one transaction: it locks the
// provider's rows overlapping the requested interval, aborts with
// ErrSlotTaken when one exists, and otherwise commits the new Pending row.
// The row lock only serializes writers against committed rows, so two racing
// inserts with overlapping but distinct intervals can both pass the check;
// the excl_provider_interval exclusion constraint (and the exact-start unique
// key) catches that insert and is translated to the same conflict. Exactly
// one of N simultaneous writers for overlapping intervals can succeed.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking == nil {
		return fmt.Errorf("booking payload is nil")
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.StatusPending
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create booking: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT id FROM bookings
WHERE provider_id = $1 AND start_time < $3 AND end_time > $2
FOR UPDATE`
	var existing []string
	if err = tx.SelectContext(ctx, &existing, lockQuery, booking.ProviderID, booking.StartTime, booking.EndTime); err != nil {
		return fmt.Errorf("lock conflicting bookings: %w", err)
	}
	if len(existing) > 0 {
		err = appErrors.ErrSlotTaken
		return err
	}

	const insertQuery = `
INSERT INTO bookings (id, service_id, customer_id, provider_id, start_time, end_time, status, created_at, updated_at)
VALUES (:id, :service_id, :customer_id, :provider_id, :start_time, :end_time, :status, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insertQuery, booking); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch string(pqErr.Code) {
			case pqUniqueViolation, pqExclusionViolation:
				err = appErrors.ErrSlotTaken
				return err
			}
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create booking: %w", err)
	}
	return nil
}

// UpdateStatus transitions a booking owned by requestingProviderID. A missing
// row and a row owned by someone else both surface as sql.ErrNoRows so the
// caller cannot distinguish them. Transitions outside the state machine fail
// with ErrInvalidTransition and change nothing.
func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID, requestingProviderID string, next models.BookingStatus) (*models.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const selectQuery = `SELECT id, service_id, customer_id, provider_id, start_time, end_time, status, created_at, updated_at
FROM bookings WHERE id = $1 AND provider_id = $2 FOR UPDATE`
	var booking models.Booking
	if err = tx.GetContext(ctx, &booking, selectQuery, bookingID, requestingProviderID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("load booking for update: %w", err)
	}

	if !booking.Status.CanTransitionTo(next) {
		err = appErrors.ErrInvalidTransition
		return nil, err
	}

	booking.Status = next
	booking.UpdatedAt = time.Now().UTC()
	const updateQuery = `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`
	if _, err = tx.ExecContext(ctx, updateQuery, booking.Status, booking.UpdatedAt, booking.ID); err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return &booking, nil
}

// ListForCustomer returns the customer's bookings newest-first, joined with
// the service and provider display fields.
func (r *BookingRepository) ListForCustomer(ctx context.Context, customerID string) ([]models.BookingDetail, error) {
	const query = `
SELECT b.id, b.service_id, b.customer_id, b.provider_id, b.start_time, b.end_time, b.status, b.created_at, b.updated_at,
       COALESCE(s.service_name, '') AS service_name,
       COALESCE(s.price, 0) AS price,
       COALESCE(p.name, '') AS provider_name,
       '' AS customer_name
FROM bookings b
LEFT JOIN services s ON s.id = b.service_id
LEFT JOIN users p ON p.id = b.provider_id
WHERE b.customer_id = $1
ORDER BY b.start_time DESC`
	var rows []models.BookingDetail
	if err := r.db.SelectContext(ctx, &rows, query, customerID); err != nil {
		return nil, fmt.Errorf("list bookings for customer: %w", err)
	}
	return rows, nil
}

// ListForProvider returns the provider's bookings newest-first, joined with
// the service and customer display fields.
func (r *BookingRepository) ListForProvider(ctx context.Context, providerID string) ([]models.BookingDetail, error) {
	const query = `
SELECT b.id, b.service_id, b.customer_id, b.provider_id, b.start_time, b.end_time, b.status, b.created_at, b.updated_at,
       COALESCE(s.service_name, '') AS service_name,
       COALESCE(s.price, 0) AS price,
       COALESCE(c.name, '') AS customer_name,
       '' AS provider_name
FROM bookings b
LEFT JOIN services s ON s.id = b.service_id
LEFT JOIN users c ON c.id = b.customer_id
WHERE b.provider_id = $1
ORDER BY b.start_time DESC`
	var rows []models.BookingDetail
	if err := r.db.SelectContext(ctx, &rows, query, providerID); err != nil {
		return nil, fmt.Errorf("list bookings for provider: %w", err)
	}
	return rows, nil
}

// ListStartTimesForRange returns the start times of every booking for the
// provider inside [from, to). Feeds the availability computation.
func (r *BookingRepository) ListStartTimesForRange(ctx context.Context, providerID string, from, to time.Time) ([]time.Time, error) {
	const query = `SELECT start_time FROM bookings
WHERE provider_id = $1 AND start_time >= $2 AND start_time < $3
ORDER BY start_time ASC`
	var starts []time.Time
	if err := r.db.SelectContext(ctx, &starts, query, providerID, from, to); err != nil {
		return nil, fmt.Errorf("list booking start times: %w", err)
	}
	return starts, nil
}
