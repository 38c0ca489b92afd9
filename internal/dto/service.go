package dto

// CreateServiceRequest adds a catalog listing for the authenticated provider.
type CreateServiceRequest struct {
	ServiceName     string  `json:"service_name" validate:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Price           float64 `json:"price" validate:"gte=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0"`
	Availability    string  `json:"availability"`
	Location        string  `json:"location"`
	ImageURL        string  `json:"image_url"`
}

// UpdateServiceRequest edits an existing listing owned by the caller.
type UpdateServiceRequest struct {
	ServiceName     string  `json:"service_name" validate:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Price           float64 `json:"price" validate:"gte=0"`
	DurationMinutes int     `json:"duration_minutes" validate:"gte=0"`
	Availability    string  `json:"availability"`
	Location        string  `json:"location"`
	ImageURL        string  `json:"image_url"`
}

// ServiceFilter narrows public catalog listings.
type ServiceFilter struct {
	Category   string
	Keyword    string
	Location   string
	ProviderID string
}
