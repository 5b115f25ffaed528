package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/modules/appointment/entity"
	calendarentity "clinic-calendar-api/modules/calendar/entity"
	"clinic-calendar-api/modules/calendar/provider"

	"github.com/google/uuid"
)

type fakeTokens struct {
	token string
	err   *errors.AppError
	calls int
}

func (f *fakeTokens) GetValidToken(context.Context, uuid.UUID) (string, *errors.AppError) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type fakeCalendar struct {
	mu          sync.Mutex
	busy        []calendarentity.BusyInterval
	freeBusyErr error
	createErr   error
	deleteErr   error
	freeBusy    int
	created     []provider.EventInput
	deleted     []string
	deleteCtxOK bool
}

func (f *fakeCalendar) FreeBusy(_ context.Context, _, _ string, _, _ time.Time) ([]calendarentity.BusyInterval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freeBusy++
	if f.freeBusyErr != nil {
		return nil, f.freeBusyErr
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, _ string, in provider.EventInput) (*provider.CreatedEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	return &provider.CreatedEvent{ID: "evt-" + uuid.NewString()[:8], HTMLLink: "https://calendar.example.test/event"}, nil
}

func (f *fakeCalendar) DeleteEvent(ctx context.Context, _, _, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, eventID)
	f.deleteCtxOK = ctx.Err() == nil
	return f.deleteErr
}

func (f *fakeCalendar) PrimaryCalendar(context.Context, string) (string, error) {
	return "owner@example.test", nil
}

func (f *fakeCalendar) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.freeBusy + len(f.created) + len(f.deleted)
}

type fakeAppointmentRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*entity.Appointment
	createErr error
	listErr   error
	creates   int
}

func newFakeAppointmentRepo(appts ...*entity.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{rows: map[uuid.UUID]*entity.Appointment{}}
	for _, a := range appts {
		r.rows[a.ID] = a
	}
	return r
}

func (r *fakeAppointmentRepo) Create(_ context.Context, appt *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	cp := *appt
	r.rows[appt.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, accountID, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok || a.AccountID != accountID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) ListByAccount(_ context.Context, accountID uuid.UUID, status entity.Status, limit, offset int) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := []entity.Appointment{}
	for _, a := range r.rows {
		if a.AccountID == accountID && (status == "" || a.Status == status) {
			out = append(out, *a)
		}
	}
	if offset >= len(out) {
		return []entity.Appointment{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAppointmentRepo) UpdateStatus(_ context.Context, accountID, id uuid.UUID, from, to entity.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.rows[id]
	if !ok || a.AccountID != accountID || a.Status != from {
		return false, nil
	}
	a.Status = to
	return true, nil
}

var errDBDown = stderrors.New("connection refused")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
