package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanager/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	addressRepo    domain.AddressRepository
	pointRepo      domain.PointRepository
	userRepo       domain.UserRepository
	tx             domain.Transactor
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	addressRepo domain.AddressRepository,
	pointRepo domain.PointRepository,
	userRepo domain.UserRepository,
	tx domain.Transactor,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		addressRepo:    addressRepo,
		pointRepo:      pointRepo,
		userRepo:       userRepo,
		tx:             tx,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) FindByID(ctx context.Context, id string) (*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewEventDto(event), nil
}

// SaveEvent stores a new event owned by user. Address and Point reuse existing
// rows with the same natural key. New events always start unconfirmed.
func (s *eventService) SaveEvent(ctx context.Context, user *domain.User, dto *domain.EventDto) (*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("event owner is required")
	}

	event := domain.EventFromDto(dto)
	event.ID = ""
	event.UserID = user.ID
	event.Confirm = false

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.resolveLocation(ctx, event); err != nil {
			return err
		}
		if err := s.eventRepo.Save(ctx, event); err != nil {
			return fmt.Errorf("save event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return domain.NewEventDto(event), nil
}

// UpdateEvent overwrites the descriptive fields and location of an event.
// Confirm and the owner are never changed here.
func (s *eventService) UpdateEvent(ctx context.Context, id string, dto *domain.EventDto) (*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var event *domain.Event
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.getEvent(ctx, id)
		if err != nil {
			return err
		}

		event.Address = domain.AddressFromDto(dto.Address)
		event.Point = domain.PointFromDto(dto.Point)
		if err := s.resolveLocation(ctx, event); err != nil {
			return err
		}

		event.Name = dto.Name
		event.EventType = dto.EventType
		event.Date = dto.Date
		event.StartTime = dto.StartTime
		event.EndTime = dto.EndTime

		return s.saveExisting(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return domain.NewEventDto(event), nil
}

func (s *eventService) DeleteEventByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) FindAll(ctx context.Context) ([]*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return domain.NewEventDtos(events), nil
}

func (s *eventService) FindByConfirmIsTrue(ctx context.Context) ([]*domain.EventDto, error) {
	return s.findByConfirm(ctx, true)
}

func (s *eventService) FindByConfirmIsFalse(ctx context.Context) ([]*domain.EventDto, error) {
	return s.findByConfirm(ctx, false)
}

func (s *eventService) findByConfirm(ctx context.Context, confirm bool) ([]*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByConfirm(ctx, confirm)
	if err != nil {
		return nil, fmt.Errorf("list events by confirm=%t: %w", confirm, err)
	}
	return domain.NewEventDtos(events), nil
}

func (s *eventService) FindByUser(ctx context.Context, userID string) ([]*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events by user: %w", err)
	}
	return domain.NewEventDtos(events), nil
}

func (s *eventService) FindAllWithCriteria(ctx context.Context, criteria domain.EventCriteria) ([]*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByCriteria(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("list events by criteria: %w", err)
	}
	return domain.NewEventDtos(events), nil
}

// IsEventExist reports whether an event with the same name is stored.
func (s *eventService) IsEventExist(ctx context.Context, dto *domain.EventDto) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event := domain.EventFromDto(dto)
	_, err := s.eventRepo.GetByName(ctx, event.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get event by name: %w", err)
	}
	return true, nil
}

func (s *eventService) AcceptEvent(ctx context.Context, id string) (*domain.EventDto, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var event *domain.Event
	accepted := false
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.getEvent(ctx, id)
		if err != nil {
			return err
		}
		if event.Confirm {
			return nil
		}
		event.Confirm = true
		if err := s.saveExisting(ctx, event); err != nil {
			return err
		}
		accepted = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if accepted {
		s.notifyAccepted(ctx, event)
	}
	return domain.NewEventDto(event), nil
}

// notifyAccepted emails the owner. Failures are logged only; the accept is already committed.
func (s *eventService) notifyAccepted(ctx context.Context, event *domain.Event) {
	owner, err := s.userRepo.GetByID(ctx, event.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "event accepted notification skipped", "event_id", event.ID, "err", err)
		return
	}
	data := &domain.EventAcceptedEmailData{
		Email:     owner.Email,
		Name:      owner.Name,
		EventName: event.Name,
		EventDate: event.Date.Format(time.DateOnly),
	}
	if event.Address != nil {
		data.City = event.Address.City
		data.Street = event.Address.Street
		data.Number = event.Address.Number
	}
	if err := s.emailService.SendEventAccepted(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "event accepted notification failed", "event_id", event.ID, "err", err)
	}
}

func (s *eventService) getEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.EventNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) saveExisting(ctx context.Context, event *domain.Event) error {
	if err := s.eventRepo.Save(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.EventNotFoundError{ID: event.ID}
		}
		return fmt.Errorf("save event: %w", err)
	}
	return nil
}

// resolveLocation points the event at stored Address and Point rows,
// reusing rows that share the natural key.
func (s *eventService) resolveLocation(ctx context.Context, event *domain.Event) error {
	if err := s.addressRepo.FindOrCreate(ctx, event.Address); err != nil {
		return fmt.Errorf("resolve address: %w", err)
	}
	if err := s.pointRepo.FindOrCreate(ctx, event.Point); err != nil {
		return fmt.Errorf("resolve point: %w", err)
	}
	return nil
}
