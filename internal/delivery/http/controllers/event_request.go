package controllers

import (
	"fmt"
	"strings"
	"time"

	"eventmanager/internal/domain"
)

const clockLayout = "15:04"

// AddressRequest is the address part of an event request body.
type AddressRequest struct {
	City   string `json:"city"`
	Street string `json:"street"`
	Number int    `json:"number"`
}

// PointRequest is the map coordinate part of an event request body.
type PointRequest struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// EventRequest is the request body for POST /events and PUT /events/{eventID}.
// Confirm and owner are never taken from the body.
type EventRequest struct {
	Name      string         `json:"name"`
	EventType string         `json:"event_type"`
	Date      string         `json:"date" example:"2026-06-01"`
	StartTime string         `json:"start_time" example:"18:00"`
	EndTime   string         `json:"end_time" example:"21:00"`
	Address   AddressRequest `json:"address"`
	Point     PointRequest   `json:"point"`
}

// Validate implements Validator.
func (e EventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(e.EventType) == "" {
		errs = append(errs, "event_type is required")
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		errs = append(errs, "date must be YYYY-MM-DD")
	}
	start, startErr := time.Parse(clockLayout, e.StartTime)
	if startErr != nil {
		errs = append(errs, "start_time must be HH:MM")
	}
	end, endErr := time.Parse(clockLayout, e.EndTime)
	if endErr != nil {
		errs = append(errs, "end_time must be HH:MM")
	}
	if startErr == nil && endErr == nil && !end.After(start) {
		errs = append(errs, "end_time must be after start_time")
	}
	if strings.TrimSpace(e.Address.City) == "" {
		errs = append(errs, "address.city is required")
	}
	if strings.TrimSpace(e.Address.Street) == "" {
		errs = append(errs, "address.street is required")
	}
	if e.Address.Number <= 0 {
		errs = append(errs, "address.number must be positive")
	}
	if e.Point.Latitude < -90 || e.Point.Latitude > 90 {
		errs = append(errs, "point.latitude must be between -90 and 90")
	}
	if e.Point.Longitude < -180 || e.Point.Longitude > 180 {
		errs = append(errs, "point.longitude must be between -180 and 180")
	}
	return errs
}

// ToDto converts a validated request to the service shape.
func (e EventRequest) ToDto() (*domain.EventDto, error) {
	date, err := time.Parse(time.DateOnly, e.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date: %w", err)
	}
	start, err := time.Parse(clockLayout, e.StartTime)
	if err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	end, err := time.Parse(clockLayout, e.EndTime)
	if err != nil {
		return nil, fmt.Errorf("parse end_time: %w", err)
	}
	return &domain.EventDto{
		Name:      strings.TrimSpace(e.Name),
		EventType: strings.TrimSpace(e.EventType),
		Date:      date,
		StartTime: start.Format(clockLayout),
		EndTime:   end.Format(clockLayout),
		Address: domain.AddressDto{
			City:   strings.TrimSpace(e.Address.City),
			Street: strings.TrimSpace(e.Address.Street),
			Number: e.Address.Number,
		},
		Point: domain.PointDto{Longitude: e.Point.Longitude, Latitude: e.Point.Latitude},
	}, nil
}

// EventResponse is the API shape of an event, with the date as YYYY-MM-DD.
// swagger:model EventResponse
type EventResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	EventType string            `json:"event_type"`
	Date      string            `json:"date"`
	StartTime string            `json:"start_time"`
	EndTime   string            `json:"end_time"`
	Confirm   bool              `json:"confirm"`
	UserID    string            `json:"user_id,omitempty"`
	Address   domain.AddressDto `json:"address"`
	Point     domain.PointDto   `json:"point"`
}

func newEventResponse(dto *domain.EventDto) *EventResponse {
	if dto == nil {
		return nil
	}
	return &EventResponse{
		ID:        dto.ID,
		Name:      dto.Name,
		EventType: dto.EventType,
		Date:      dto.Date.Format(time.DateOnly),
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Confirm:   dto.Confirm,
		UserID:    dto.UserID,
		Address:   dto.Address,
		Point:     dto.Point,
	}
}

func newEventResponses(dtos []*domain.EventDto) []*EventResponse {
	out := make([]*EventResponse, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, newEventResponse(d))
	}
	return out
}
