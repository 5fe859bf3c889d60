package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"eventmanager/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	if e.Address != nil {
		a := *e.Address
		c.Address = &a
	}
	if e.Point != nil {
		p := *e.Point
		c.Point = &p
	}
	return &c
}

// fakeEventRepo is an in-memory EventRepository for tests. It stores copies,
// so changes reach it only through Save.
type fakeEventRepo struct {
	byID         map[string]*domain.Event
	order        []string
	nextID       int
	err          error // if set, every call returns this error
	saves        int
	lastCriteria *domain.EventCriteria
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return cloneEvent(e), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, id := range f.order {
		if f.byID[id].Name == name {
			return cloneEvent(f.byID[id]), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) filter(keep func(e *domain.Event) bool) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0)
	for _, id := range f.order {
		if e := f.byID[id]; keep(e) {
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (f *fakeEventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	return f.filter(func(*domain.Event) bool { return true })
}

func (f *fakeEventRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	return f.filter(func(e *domain.Event) bool { return e.UserID == userID })
}

func (f *fakeEventRepo) ListByConfirm(ctx context.Context, confirm bool) ([]*domain.Event, error) {
	return f.filter(func(e *domain.Event) bool { return e.Confirm == confirm })
}

func (f *fakeEventRepo) ListByCriteria(ctx context.Context, c domain.EventCriteria) ([]*domain.Event, error) {
	f.lastCriteria = &c
	return f.filter(func(e *domain.Event) bool {
		if c.EventType != "" && e.EventType != c.EventType {
			return false
		}
		if c.Confirm != nil && e.Confirm != *c.Confirm {
			return false
		}
		return true
	})
}

func (f *fakeEventRepo) Save(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if e.Address == nil || e.Address.ID == "" || e.Point == nil || e.Point.ID == "" {
		return fmt.Errorf("event address and point must be stored before the event")
	}
	f.saves++
	if e.ID == "" {
		e.ID = fmt.Sprintf("ev-%d", f.nextID)
		f.nextID++
		f.order = append(f.order, e.ID)
	} else if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	f.byID[e.ID] = cloneEvent(e)
	return nil
}

func (f *fakeEventRepo) DeleteByID(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.byID, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type addressKey struct {
	city, street string
	number       int
}

// fakeAddressRepo dedups on (city, street, number) like the unique constraint does.
type fakeAddressRepo struct {
	byKey  map[addressKey]*domain.Address
	nextID int
	err    error
}

func newFakeAddressRepo() *fakeAddressRepo {
	return &fakeAddressRepo{byKey: make(map[addressKey]*domain.Address), nextID: 1}
}

func (f *fakeAddressRepo) FindByNaturalKey(ctx context.Context, city, street string, number int) (*domain.Address, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.byKey[addressKey{city, street, number}]; ok {
		c := *a
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeAddressRepo) FindOrCreate(ctx context.Context, a *domain.Address) error {
	if f.err != nil {
		return f.err
	}
	key := addressKey{a.City, a.Street, a.Number}
	if existing, ok := f.byKey[key]; ok {
		a.ID = existing.ID
		return nil
	}
	a.ID = fmt.Sprintf("addr-%d", f.nextID)
	f.nextID++
	c := *a
	f.byKey[key] = &c
	return nil
}

type pointKey struct {
	lng, lat float64
}

type fakePointRepo struct {
	byKey  map[pointKey]*domain.Point
	nextID int
	err    error
}

func newFakePointRepo() *fakePointRepo {
	return &fakePointRepo{byKey: make(map[pointKey]*domain.Point), nextID: 1}
}

func (f *fakePointRepo) FindByNaturalKey(ctx context.Context, longitude, latitude float64) (*domain.Point, error) {
	if p, ok := f.byKey[pointKey{longitude, latitude}]; ok {
		c := *p
		return &c, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePointRepo) FindOrCreate(ctx context.Context, p *domain.Point) error {
	if f.err != nil {
		return f.err
	}
	key := pointKey{p.Longitude, p.Latitude}
	if existing, ok := f.byKey[key]; ok {
		p.ID = existing.ID
		return nil
	}
	p.ID = fmt.Sprintf("pt-%d", f.nextID)
	f.nextID++
	c := *p
	f.byKey[key] = &c
	return nil
}

// fakeTransactor runs fn inline and counts calls.
type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	nextID    int
	createErr error
	getErr    error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// fakeEmailService records sent notifications.
type fakeEmailService struct {
	sent []*domain.EventAcceptedEmailData
	err  error
}

func (f *fakeEmailService) SendEventAccepted(ctx context.Context, data *domain.EventAcceptedEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

func dtoIDs(dtos []*domain.EventDto) []string {
	ids := make([]string, 0, len(dtos))
	for _, d := range dtos {
		ids = append(ids, d.ID)
	}
	sort.Strings(ids)
	return ids
}
