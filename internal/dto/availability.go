package dto

// AvailabilityResponse lists the offerable slot start times as "HH:MM"
// strings in chronological order.
type AvailabilityResponse struct {
	AvailableSlots []string `json:"availableSlots"`
}
