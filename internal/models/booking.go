package models

import "time"

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	StatusPending   BookingStatus = "Pending"
	StatusConfirmed BookingStatus = "Confirmed"
	StatusRejected  BookingStatus = "Rejected"
	StatusCompleted BookingStatus = "Completed"
	StatusCancelled BookingStatus = "Cancelled"
)

// bookingTransitions is the guarded state machine: Pending is decided by the
// provider, Confirmed runs to a terminal outcome, everything else is final.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusRejected},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// Valid reports whether the status is a known state.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition table permits moving to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is a reservation row. For a fixed provider no two bookings may
// share a start_time; the ledger enforces this transactionally. Rows are
// created Pending by a customer and thereafter mutated only by the owning
// provider, never deleted.
type Booking struct {
	ID         string        `db:"id" json:"id"`
	ServiceID  string        `db:"service_id" json:"service_id"`
	CustomerID string        `db:"customer_id" json:"customer_id"`
	ProviderID string        `db:"provider_id" json:"provider_id"`
	StartTime  time.Time     `db:"start_time" json:"start_time"`
	EndTime    time.Time     `db:"end_time" json:"end_time"`
	Status     BookingStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingDetail joins a booking with the display fields list endpoints need.
type BookingDetail struct {
	Booking
	ServiceName  string  `db:"service_name" json:"service_name"`
	Price        float64 `db:"price" json:"price"`
	CustomerName string  `db:"customer_name" json:"customer_name,omitempty"`
	ProviderName string  `db:"provider_name" json:"provider_name,omitempty"`
}
