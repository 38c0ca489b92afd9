package dto

import "time"

// CreateBookingRequest reserves one slot for the authenticated customer.
type CreateBookingRequest struct {
	ServiceID        string `json:"service_id" validate:"required"`
	ProviderID       string `json:"provider_id" validate:"required"`
	BookingStartTime string `json:"booking_start_time" validate:"required"`
}

// UpdateBookingStatusRequest moves a booking through its state machine.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// BookingListItem is one row of the role-scoped booking listing. Customers
// see the provider's name, providers see the customer's.
type BookingListItem struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	BookingStartTime time.Time `json:"booking_start_time"`
	ServiceName      string    `json:"service_name"`
	Price            float64   `json:"price"`
	CustomerName     string    `json:"customer_name,omitempty"`
	ProviderName     string    `json:"provider_name,omitempty"`
}
