package domain

import (
	"context"
	"time"
)

// Event is a user-submitted event with its shared location records.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EventType string    `json:"event_type"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Confirm   bool      `json:"confirm"`
	UserID    string    `json:"user_id"`
	Address   *Address  `json:"address"`
	Point     *Point    `json:"point"`
}

// EventRepository defines the interface for event storage.
// Lookups by a single key return ErrNotFound when nothing matches.
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByName(ctx context.Context, name string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByUserID(ctx context.Context, userID string) ([]*Event, error)
	ListByConfirm(ctx context.Context, confirm bool) ([]*Event, error)
	ListByCriteria(ctx context.Context, criteria EventCriteria) ([]*Event, error)
	// Save inserts the event when ID is empty and updates it otherwise.
	Save(ctx context.Context, event *Event) error
	// DeleteByID removes the event. A missing id is not an error.
	DeleteByID(ctx context.Context, id string) error
}

// Transactor runs fn inside a single database transaction carried by ctx.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventService defines the business logic for events.
type EventService interface {
	FindByID(ctx context.Context, id string) (*EventDto, error)
	SaveEvent(ctx context.Context, user *User, dto *EventDto) (*EventDto, error)
	UpdateEvent(ctx context.Context, id string, dto *EventDto) (*EventDto, error)
	DeleteEventByID(ctx context.Context, id string) error
	FindAll(ctx context.Context) ([]*EventDto, error)
	FindByConfirmIsTrue(ctx context.Context) ([]*EventDto, error)
	FindByConfirmIsFalse(ctx context.Context) ([]*EventDto, error)
	FindByUser(ctx context.Context, userID string) ([]*EventDto, error)
	FindAllWithCriteria(ctx context.Context, criteria EventCriteria) ([]*EventDto, error)
	IsEventExist(ctx context.Context, dto *EventDto) (bool, error)
	// AcceptEvent sets confirm to true and persists it. Accepting twice is a no-op.
	AcceptEvent(ctx context.Context, id string) (*EventDto, error)
}
