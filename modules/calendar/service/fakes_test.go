package service

import (
	"context"
	"sync"
	"time"

	"clinic-calendar-api/modules/calendar/entity"
	"clinic-calendar-api/modules/calendar/provider"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type fakeCredentialRepo struct {
	mu        sync.Mutex
	creds     map[uuid.UUID]*entity.CalendarCredential
	getErr    error
	updateErr error
	staleRow  bool
	updates   int
	upserts   int
	deletes   int
}

func newFakeCredentialRepo(creds ...*entity.CalendarCredential) *fakeCredentialRepo {
	r := &fakeCredentialRepo{creds: map[uuid.UUID]*entity.CalendarCredential{}}
	for _, c := range creds {
		r.creds[c.AccountID] = c
	}
	return r
}

func (r *fakeCredentialRepo) GetByAccountID(_ context.Context, accountID uuid.UUID) (*entity.CalendarCredential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.creds[accountID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCredentialRepo) Upsert(_ context.Context, cred *entity.CalendarCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	cp := *cred
	r.creds[cred.AccountID] = &cp
	return nil
}

func (r *fakeCredentialRepo) UpdateAccessToken(_ context.Context, accountID uuid.UUID, accessToken string, expiresAt, observedExpiry time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	if r.updateErr != nil {
		return false, r.updateErr
	}
	c, ok := r.creds[accountID]
	if !ok || r.staleRow || !c.TokenExpiresAt.Equal(observedExpiry) {
		return false, nil
	}
	c.AccessToken = accessToken
	c.TokenExpiresAt = expiresAt
	return true, nil
}

func (r *fakeCredentialRepo) Delete(_ context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.creds, accountID)
	return nil
}

type fakeOAuth struct {
	mu            sync.Mutex
	refreshCalls  int
	refreshToken  *oauth2.Token
	refreshErr    error
	exchangeToken *oauth2.Token
	exchangeErr   error
}

func (f *fakeOAuth) Refresh(_ context.Context, _ string) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshToken, f.refreshErr
}

func (f *fakeOAuth) AuthCodeURL(state string) string {
	return "https://accounts.example.test/auth?state=" + state
}

func (f *fakeOAuth) Exchange(_ context.Context, _ string) (*oauth2.Token, error) {
	return f.exchangeToken, f.exchangeErr
}

type freeBusyCall struct {
	token      string
	calendarID string
	start, end time.Time
}

type fakeCalendar struct {
	mu            sync.Mutex
	busy          []entity.BusyInterval
	freeBusyErr   error
	freeBusyCalls []freeBusyCall
	primary       string
	primaryErr    error
}

func (f *fakeCalendar) FreeBusy(_ context.Context, token, calendarID string, start, end time.Time) ([]entity.BusyInterval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.freeBusyCalls = append(f.freeBusyCalls, freeBusyCall{token, calendarID, start, end})
	if f.freeBusyErr != nil {
		return nil, f.freeBusyErr
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(context.Context, string, provider.EventInput) (*provider.CreatedEvent, error) {
	return &provider.CreatedEvent{ID: "evt"}, nil
}

func (f *fakeCalendar) DeleteEvent(context.Context, string, string, string) error {
	return nil
}

func (f *fakeCalendar) PrimaryCalendar(context.Context, string) (string, error) {
	return f.primary, f.primaryErr
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
