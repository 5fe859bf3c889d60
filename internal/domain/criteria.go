package domain

import "time"

// EventCriteria filters an event listing. Nil/empty fields do not filter.
// Services pass it to the repository unchanged.
type EventCriteria struct {
	// Name matches case-insensitively as a substring.
	Name      string
	EventType string
	City      string
	DateFrom  *time.Time
	DateTo    *time.Time
	Confirm   *bool
	UserID    string
	PaginationParams
}
