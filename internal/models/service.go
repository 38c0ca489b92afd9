package models

import "time"

// DefaultServiceDurationMinutes applies when a service does not specify
// its own appointment length.
const DefaultServiceDurationMinutes = 60

// Service is a provider's catalog listing.
type Service struct {
	ID              string    `db:"id" json:"id"`
	ProviderID      string    `db:"provider_id" json:"provider_id"`
	ServiceName     string    `db:"service_name" json:"service_name"`
	Description     string    `db:"description" json:"description"`
	Category        string    `db:"category" json:"category"`
	Price           float64   `db:"price" json:"price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Availability    string    `db:"availability" json:"availability"`
	Location        string    `db:"location" json:"location"`
	ImageURL        string    `db:"image_url" json:"image_url"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Duration returns the service's appointment length.
func (s *Service) Duration() time.Duration {
	minutes := s.DurationMinutes
	if minutes <= 0 {
		minutes = DefaultServiceDurationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// ServiceListing is a catalog row joined with the provider's display name.
type ServiceListing struct {
	Service
	ProviderName string `db:"provider_name" json:"provider_name"`
}
