package dto

// ScheduleEntryPayload is one weekly window in a schedule replace request.
type ScheduleEntryPayload struct {
	DayOfWeek   *int   `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	IsAvailable bool   `json:"is_available"`
}

// ReplaceSchedulesRequest swaps the provider's entire weekly schedule in one
// atomic operation. An empty list clears the schedule.
type ReplaceSchedulesRequest struct {
	Schedules []ScheduleEntryPayload `json:"schedules" validate:"dive"`
}

// ScheduleEntryResponse is one persisted weekly window.
type ScheduleEntryResponse struct {
	DayOfWeek   int    `json:"day_of_week"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}
