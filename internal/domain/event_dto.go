package domain

import "time"

// AddressDto is the API shape of an Address.
type AddressDto struct {
	City   string `json:"city"`
	Street string `json:"street"`
	Number int    `json:"number"`
}

// PointDto is the API shape of a Point.
type PointDto struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// EventDto is the API shape of an Event. Address and Point are carried by value.
// swagger:model EventDto
type EventDto struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	EventType string     `json:"event_type"`
	Date      time.Time  `json:"date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Confirm   bool       `json:"confirm"`
	UserID    string     `json:"user_id,omitempty"`
	Address   AddressDto `json:"address"`
	Point     PointDto   `json:"point"`
}

// NewEventDto maps a stored event to its API shape. A nil event maps to nil.
func NewEventDto(e *Event) *EventDto {
	if e == nil {
		return nil
	}
	dto := &EventDto{
		ID:        e.ID,
		Name:      e.Name,
		EventType: e.EventType,
		Date:      e.Date,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Confirm:   e.Confirm,
		UserID:    e.UserID,
	}
	if e.Address != nil {
		dto.Address = AddressDto{City: e.Address.City, Street: e.Address.Street, Number: e.Address.Number}
	}
	if e.Point != nil {
		dto.Point = PointDto{Longitude: e.Point.Longitude, Latitude: e.Point.Latitude}
	}
	return dto
}

// NewEventDtos maps a slice of events. The result is never nil.
func NewEventDtos(events []*Event) []*EventDto {
	out := make([]*EventDto, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventDto(e))
	}
	return out
}

// EventFromDto builds an unsaved Event from dto. Address and Point are new
// records without ids; the owner is left empty.
func EventFromDto(dto *EventDto) *Event {
	return &Event{
		ID:        dto.ID,
		Name:      dto.Name,
		EventType: dto.EventType,
		Date:      dto.Date,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Confirm:   dto.Confirm,
		Address:   AddressFromDto(dto.Address),
		Point:     PointFromDto(dto.Point),
	}
}

func AddressFromDto(dto AddressDto) *Address {
	return &Address{City: dto.City, Street: dto.Street, Number: dto.Number}
}

func PointFromDto(dto PointDto) *Point {
	return &Point{Longitude: dto.Longitude, Latitude: dto.Latitude}
}
