package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories and services.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// EventNotFoundError is returned when an event lookup by id finds nothing.
// It matches ErrNotFound via errors.Is.
type EventNotFoundError struct {
	ID string
}

func (e *EventNotFoundError) Error() string {
	return fmt.Sprintf("could not find event %s", e.ID)
}

func (e *EventNotFoundError) Unwrap() error {
	return ErrNotFound
}
