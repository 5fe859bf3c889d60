package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"eventmanager/internal/delivery/http/helpers"
	"eventmanager/internal/delivery/http/middleware"
	"eventmanager/internal/domain"

	"github.com/google/uuid"
)

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  *EventResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for event listings.
type EventListSuccessResponse struct {
	Data  []*EventResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Users   domain.UserService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, users domain.UserService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Users:   users,
	}
}

// ListEvents godoc
// @Summary List all events
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.FindAll(r.Context())
	c.writeList(w, r, events, err)
}

// ListConfirmed godoc
// @Summary List accepted events
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/confirmed [get]
func (c *EventController) ListConfirmed(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.FindByConfirmIsTrue(r.Context())
	c.writeList(w, r, events, err)
}

// ListUnconfirmed godoc
// @Summary List events waiting for acceptance
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/unconfirmed [get]
func (c *EventController) ListUnconfirmed(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.FindByConfirmIsFalse(r.Context())
	c.writeList(w, r, events, err)
}

// SearchEvents godoc
// @Summary Search events
// @Description Filters combine with AND. Name matches case-insensitively as a substring.
// @Tags events
// @Produce json
// @Param name query string false "Name substring"
// @Param event_type query string false "Event type"
// @Param city query string false "Address city"
// @Param date_from query string false "Earliest date (YYYY-MM-DD)"
// @Param date_to query string false "Latest date (YYYY-MM-DD)"
// @Param confirm query bool false "Accepted flag"
// @Param user_id query string false "Owner ID (UUID)"
// @Param page query int false "Page number (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/search [get]
func (c *EventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	events, err := c.Service.FindAllWithCriteria(r.Context(), criteria)
	c.writeList(w, r, events, err)
}

// ListMyEvents godoc
// @Summary List the caller's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/me [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.FindByUser(r.Context(), userID)
	c.writeList(w, r, events, err)
}

// ListUserEvents godoc
// @Summary List events owned by a user
// @Tags events
// @Produce json
// @Param userID path string true "User ID (UUID)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/events [get]
func (c *EventController) ListUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}
	events, err := c.Service.FindByUser(r.Context(), userID)
	c.writeList(w, r, events, err)
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.FindByID(r.Context(), eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// CreateEvent godoc
// @Summary Create a new event
// @Description The authenticated user becomes the owner. New events start unconfirmed. Address and point are reused when an identical one is already stored.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body EventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.Users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unknown user")
			return
		}
		c.writeError(w, r, err)
		return
	}
	dto, err := req.ToDto()
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	exists, err := c.Service.IsEventExist(r.Context(), dto)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	if exists {
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event with this name already exists")
		return
	}
	created, err := c.Service.SaveEvent(r.Context(), user, dto)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventResponse(created))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the descriptive fields and location. The accepted flag and owner are kept. Only the owner or an admin may update.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param event body EventRequest true "Event data"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.authorizeOwner(r, eventID); err != nil {
		c.writeError(w, r, err)
		return
	}
	dto, err := req.ToDto()
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	updated, err := c.Service.UpdateEvent(r.Context(), eventID, dto)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(updated))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deleting an unknown id succeeds. Only the owner or an admin may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.authorizeOwner(r, eventID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		c.writeError(w, r, err)
		return
	}
	if err := c.Service.DeleteEventByID(r.Context(), eventID); err != nil {
		c.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AcceptEvent godoc
// @Summary Accept an event
// @Description Marks the event as confirmed and emails the owner. Accepting twice is a no-op. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/accept [post]
func (c *EventController) AcceptEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathUUID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.AcceptEvent(r.Context(), eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// authorizeOwner returns ErrForbidden unless the caller owns the event or is an admin.
func (c *EventController) authorizeOwner(r *http.Request, eventID string) error {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return domain.ErrForbidden
	}
	if role, _ := middleware.RoleFromContext(r.Context()); role == domain.RoleAdmin {
		return nil
	}
	event, err := c.Service.FindByID(r.Context(), eventID)
	if err != nil {
		return err
	}
	if event.UserID != userID {
		return domain.ErrForbidden
	}
	return nil
}

func (c *EventController) writeList(w http.ResponseWriter, r *http.Request, events []*domain.EventDto, err error) {
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponses(events))
}

func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *domain.EventNotFoundError
	switch {
	case errors.As(err, &notFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFound.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
	}
}

// pathUUID reads a UUID path value, writing 400 when it is missing or malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, name+" must be a UUID")
		return "", false
	}
	return id.String(), true
}

func parseCriteria(r *http.Request) (domain.EventCriteria, error) {
	q := r.URL.Query()
	criteria := domain.EventCriteria{
		Name:             q.Get("name"),
		EventType:        q.Get("event_type"),
		City:             q.Get("city"),
		PaginationParams: helpers.ParsePagination(r),
	}
	for _, f := range []struct {
		key  string
		dest **time.Time
	}{
		{"date_from", &criteria.DateFrom},
		{"date_to", &criteria.DateTo},
	} {
		s := q.Get(f.key)
		if s == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return criteria, fmt.Errorf("%s must be YYYY-MM-DD", f.key)
		}
		*f.dest = &d
	}
	if s := q.Get("confirm"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return criteria, fmt.Errorf("confirm must be true or false")
		}
		criteria.Confirm = &v
	}
	if s := q.Get("user_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return criteria, fmt.Errorf("user_id must be a UUID")
		}
		criteria.UserID = id.String()
	}
	return criteria, nil
}
