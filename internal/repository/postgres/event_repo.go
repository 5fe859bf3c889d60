package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventmanager/internal/domain"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

var eventColumns = []string{
	"e.id", "e.name", "e.event_type", "e.date",
	"to_char(e.start_time, 'HH24:MI')", "to_char(e.end_time, 'HH24:MI')",
	"e.confirm", "e.user_id",
	"a.id", "a.city", "a.street", "a.number",
	"p.id", "p.longitude", "p.latitude",
}

const (
	eventFrom = `events e
		JOIN addresses a ON a.id = e.address_id
		JOIN points p ON p.id = e.point_id`
	eventOrder = "e.date, e.start_time, e.name"
)

var selectEvents = "SELECT " + strings.Join(eventColumns, ", ") + " FROM " + eventFrom

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// pqInvalidTextRepresentation is raised when an id is not a valid UUID.
const pqInvalidTextRepresentation = "22P02"

func isInvalidID(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == pqInvalidTextRepresentation
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{Address: &domain.Address{}, Point: &domain.Point{}}
	err := row.Scan(
		&e.ID, &e.Name, &e.EventType, &e.Date, &e.StartTime, &e.EndTime, &e.Confirm, &e.UserID,
		&e.Address.ID, &e.Address.City, &e.Address.Street, &e.Address.Number,
		&e.Point.ID, &e.Point.Longitude, &e.Point.Latitude,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// GetByID loads an event. Inside a transaction the event row is locked until
// commit, so a read-modify-Save cannot overwrite a concurrent write.
func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := selectEvents + " WHERE e.id = $1"
	if inTx(ctx) {
		query += " FOR UPDATE OF e"
	}
	return r.getOne(ctx, query, id)
}

func (r *eventRepository) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	return r.getOne(ctx, selectEvents+" WHERE e.name = $1 ORDER BY "+eventOrder+" LIMIT 1", name)
}

func (r *eventRepository) getOne(ctx context.Context, query string, arg any) (*domain.Event, error) {
	e, err := scanEvent(querierFromCtx(ctx, r.DB).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	return r.list(ctx, selectEvents+" ORDER BY "+eventOrder)
}

func (r *eventRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	return r.list(ctx, selectEvents+" WHERE e.user_id = $1 ORDER BY "+eventOrder, userID)
}

func (r *eventRepository) ListByConfirm(ctx context.Context, confirm bool) ([]*domain.Event, error) {
	return r.list(ctx, selectEvents+" WHERE e.confirm = $1 ORDER BY "+eventOrder, confirm)
}

func (r *eventRepository) ListByCriteria(ctx context.Context, c domain.EventCriteria) ([]*domain.Event, error) {
	q := psql.Select(eventColumns...).From(eventFrom)

	where := sq.And{}
	if c.Name != "" {
		where = append(where, sq.ILike{"e.name": "%" + likeEscaper.Replace(c.Name) + "%"})
	}
	if c.EventType != "" {
		where = append(where, sq.Eq{"e.event_type": c.EventType})
	}
	if c.City != "" {
		where = append(where, sq.Eq{"a.city": c.City})
	}
	if c.DateFrom != nil {
		where = append(where, sq.GtOrEq{"e.date": *c.DateFrom})
	}
	if c.DateTo != nil {
		where = append(where, sq.LtOrEq{"e.date": *c.DateTo})
	}
	if c.Confirm != nil {
		where = append(where, sq.Eq{"e.confirm": *c.Confirm})
	}
	if c.UserID != "" {
		where = append(where, sq.Eq{"e.user_id": c.UserID})
	}
	if len(where) > 0 {
		q = q.Where(where)
	}
	q = q.OrderBy(eventOrder)
	if c.Paged() {
		q = q.Limit(uint64(c.PageSize)).Offset(uint64(c.Offset()))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build criteria query: %w", err)
	}
	return r.list(ctx, query, args...)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := querierFromCtx(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		if isInvalidID(err) {
			return make([]*domain.Event, 0), nil
		}
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Save(ctx context.Context, e *domain.Event) error {
	if e.Address == nil || e.Address.ID == "" || e.Point == nil || e.Point.ID == "" {
		return fmt.Errorf("event address and point must be stored before the event")
	}
	q := querierFromCtx(ctx, r.DB)
	if e.ID == "" {
		query := `
			INSERT INTO events (name, event_type, date, start_time, end_time, confirm, user_id, address_id, point_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`
		err := q.QueryRowContext(ctx, query,
			e.Name, e.EventType, e.Date, e.StartTime, e.EndTime, e.Confirm, e.UserID, e.Address.ID, e.Point.ID,
		).Scan(&e.ID)
		return mapEventWriteError(err)
	}

	query := `
		UPDATE events
		SET name = $1, event_type = $2, date = $3, start_time = $4, end_time = $5,
			confirm = $6, user_id = $7, address_id = $8, point_id = $9
		WHERE id = $10
	`
	result, err := q.ExecContext(ctx, query,
		e.Name, e.EventType, e.Date, e.StartTime, e.EndTime, e.Confirm, e.UserID, e.Address.ID, e.Point.ID, e.ID,
	)
	if err != nil {
		if isInvalidID(err) {
			return domain.ErrNotFound
		}
		return mapEventWriteError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := querierFromCtx(ctx, r.DB).ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if isInvalidID(err) {
		return nil
	}
	return err
}

func mapEventWriteError(err error) error {
	var perr *pq.Error
	if errors.As(err, &perr) && perr.Code == "23503" {
		return fmt.Errorf("event owner: %w", domain.ErrUserNotFound)
	}
	return err
}
