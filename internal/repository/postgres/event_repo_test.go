package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"eventmanager/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var eventRowColumns = []string{
	"id", "name", "event_type", "date", "start_time", "end_time", "confirm", "user_id",
	"address_id", "city", "street", "number",
	"point_id", "longitude", "latitude",
}

func sampleEvent(id, name string, confirm bool) *domain.Event {
	return &domain.Event{
		ID:        id,
		Name:      name,
		EventType: "concert",
		Date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "18:00",
		EndTime:   "21:30",
		Confirm:   confirm,
		UserID:    "user-1",
		Address:   &domain.Address{ID: "addr-1", City: "Krakow", Street: "Main", Number: 1},
		Point:     &domain.Point{ID: "pt-1", Longitude: 19.94, Latitude: 50.06},
	}
}

func eventRows(events ...*domain.Event) *sqlmock.Rows {
	rows := sqlmock.NewRows(eventRowColumns)
	for _, e := range events {
		rows.AddRow(
			e.ID, e.Name, e.EventType, e.Date, e.StartTime, e.EndTime, e.Confirm, e.UserID,
			e.Address.ID, e.Address.City, e.Address.Street, e.Address.Number,
			e.Point.ID, e.Point.Longitude, e.Point.Latitude,
		)
	}
	return rows
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Event
		wantErr error
	}{
		{
			name: "success",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT e\.id, e\.name, e\.event_type, e\.date, .* WHERE e\.id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(eventRows(sampleEvent("ev-1", "Open Air", false)))
			},
			want: sampleEvent("ev-1", "Open Air", false),
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE e\.id = \$1`).
					WithArgs("ev-missing").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "malformed id is not found",
			id:   "abc",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE e\.id = \$1`).
					WithArgs("abc").
					WillReturnError(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE e\.id = \$1`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByName(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE e\.name = \$1 ORDER BY e\.date, e\.start_time, e\.name LIMIT 1`).
		WithArgs("Nope").
		WillReturnRows(sqlmock.NewRows(eventRowColumns))

	repo := NewEventRepository(db)
	got, err := repo.GetByName(ctx, "Nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	first := sampleEvent("ev-1", "A", false)
	second := sampleEvent("ev-2", "B", true)
	mock.ExpectQuery(`FROM events e JOIN addresses a ON a\.id = e\.address_id JOIN points p ON p\.id = e\.point_id ORDER BY`).
		WillReturnRows(eventRows(first, second))

	repo := NewEventRepository(db)
	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []*domain.Event{first, second}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListEmptyIsNotNil(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE e\.user_id = \$1`).
		WithArgs("user-9").
		WillReturnRows(sqlmock.NewRows(eventRowColumns))

	repo := NewEventRepository(db)
	got, err := repo.ListByUserID(ctx, "user-9")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListByConfirm(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	confirmed := sampleEvent("ev-2", "B", true)
	mock.ExpectQuery(`WHERE e\.confirm = \$1`).
		WithArgs(true).
		WillReturnRows(eventRows(confirmed))

	repo := NewEventRepository(db)
	got, err := repo.ListByConfirm(ctx, true)
	require.NoError(t, err)
	require.Equal(t, []*domain.Event{confirmed}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListByCriteria(t *testing.T) {
	ctx := context.Background()
	confirm := true
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		criteria domain.EventCriteria
		mock     func(mock sqlmock.Sqlmock)
	}{
		{
			name:     "no filters",
			criteria: domain.EventCriteria{},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`JOIN points p ON p\.id = e\.point_id ORDER BY e\.date, e\.start_time, e\.name$`).
					WillReturnRows(eventRows(sampleEvent("ev-1", "A", false)))
			},
		},
		{
			name: "name and confirm with page",
			criteria: domain.EventCriteria{
				Name:             "fest",
				Confirm:          &confirm,
				PaginationParams: domain.PaginationParams{Page: 2, PageSize: 10},
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE \(e\.name ILIKE \$1 AND e\.confirm = \$2\) ORDER BY e\.date, e\.start_time, e\.name LIMIT 10 OFFSET 10`).
					WithArgs("%fest%", true).
					WillReturnRows(eventRows(sampleEvent("ev-1", "Summer fest", true)))
			},
		},
		{
			name:     "name wildcards match literally",
			criteria: domain.EventCriteria{Name: `50%_off\`},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE \(e\.name ILIKE \$1\)`).
					WithArgs(`%50\%\_off\\%`).
					WillReturnRows(eventRows(sampleEvent("ev-1", "50%_off\\ sale", false)))
			},
		},
		{
			name: "type city date and owner",
			criteria: domain.EventCriteria{
				EventType: "concert",
				City:      "Krakow",
				DateFrom:  &from,
				UserID:    "user-1",
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`WHERE \(e\.event_type = \$1 AND a\.city = \$2 AND e\.date >= \$3 AND e\.user_id = \$4\)`).
					WithArgs("concert", "Krakow", from, "user-1").
					WillReturnRows(eventRows(sampleEvent("ev-1", "A", false)))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.ListByCriteria(ctx, tt.criteria)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Save(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr error
		anyErr  bool
	}{
		{
			name:  "insert assigns id",
			event: sampleEvent("", "Open Air", false),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(name, event_type, date, start_time, end_time, confirm, user_id, address_id, point_id\)`).
					WithArgs("Open Air", "concert", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", "21:30", false, "user-1", "addr-1", "pt-1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-new"))
			},
			wantID: "ev-new",
		},
		{
			name:  "insert with unknown owner",
			event: sampleEvent("", "Open Air", false),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23503"})
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name:  "update existing",
			event: sampleEvent("ev-1", "Renamed", true),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events SET name = \$1`).
					WithArgs("Renamed", "concert", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "18:00", "21:30", true, "user-1", "addr-1", "pt-1", "ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantID: "ev-1",
		},
		{
			name:  "update with malformed id",
			event: sampleEvent("abc", "Renamed", false),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WillReturnError(&pq.Error{Code: "22P02"})
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:  "update missing row",
			event: sampleEvent("ev-gone", "Renamed", false),
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "unsaved address rejected",
			event: func() *domain.Event {
				e := sampleEvent("", "Open Air", false)
				e.Address.ID = ""
				return e
			}(),
			mock:   func(mock sqlmock.Sqlmock) {},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Save(ctx, tt.event)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
				require.Equal(t, tt.wantID, tt.event.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_DeleteByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		result  driverResult
		wantErr bool
	}{
		{name: "deleted", result: driverResult{affected: 1}},
		{name: "missing id is a no-op", result: driverResult{affected: 0}},
		{name: "malformed id is a no-op", result: driverResult{err: &pq.Error{Code: "22P02"}}},
		{name: "db error", result: driverResult{err: sql.ErrConnDone}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).WithArgs("ev-1")
			if tt.result.err != nil {
				exp.WillReturnError(tt.result.err)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.result.affected))
			}

			repo := NewEventRepository(db)
			err = repo.DeleteByID(ctx, "ev-1")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

type driverResult struct {
	affected int64
	err      error
}

func TestEventRepository_GetByIDLocksInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE e\.id = \$1$`).
		WithArgs("ev-1").
		WillReturnRows(eventRows(sampleEvent("ev-1", "Open Air", false)))
	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE e\.id = \$1 FOR UPDATE OF e$`).
		WithArgs("ev-1").
		WillReturnRows(eventRows(sampleEvent("ev-1", "Open Air", false)))
	mock.ExpectExec(`UPDATE events SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewEventRepository(db)
	_, err = repo.GetByID(context.Background(), "ev-1")
	require.NoError(t, err)

	err = NewTxManager(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		e, err := repo.GetByID(ctx, "ev-1")
		if err != nil {
			return err
		}
		e.Name = "Renamed"
		return repo.Save(ctx, e)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_ListByUserIDMalformedID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE e\.user_id = \$1`).
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02"})

	got, err := NewEventRepository(db).ListByUserID(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
