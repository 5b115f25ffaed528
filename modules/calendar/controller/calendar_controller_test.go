package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/utils"
	"clinic-calendar-api/modules/calendar/entity"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAvailability struct {
	result  *entity.Availability
	err     *errors.AppError
	horizon int
	account uuid.UUID
}

func (s *stubAvailability) ComputeAvailability(_ context.Context, accountID uuid.UUID, horizonDays int) (*entity.Availability, *errors.AppError) {
	s.account = accountID
	s.horizon = horizonDays
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubConnections struct {
	cred         *entity.CalendarCredential
	err          *errors.AppError
	disconnected bool
}

func (s *stubConnections) AuthURL(context.Context, uuid.UUID) (string, *errors.AppError) {
	return "https://accounts.example.test/auth?state=abc", nil
}

func (s *stubConnections) HandleCallback(context.Context, string, string) (*entity.CalendarCredential, *errors.AppError) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cred, nil
}

func (s *stubConnections) Status(context.Context, uuid.UUID) (*entity.CalendarCredential, *errors.AppError) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cred, nil
}

func (s *stubConnections) Disconnect(context.Context, uuid.UUID) *errors.AppError {
	s.disconnected = true
	return nil
}

func newContext(method, target string, accountID uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, target, nil), rec)
	if accountID != uuid.Nil {
		c.Set(constants.ContextTokenData, &utils.TokenClaims{UserID: accountID, Scope: constants.ScopeTokenAccess})
	}
	return c, rec
}

type envelope struct {
	Code string          `json:"code"`
	Data json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestGetAvailability(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	av := &stubAvailability{result: &entity.Availability{
		Slots:          []entity.AvailableSlot{{Start: start, End: start.Add(time.Hour), Duration: time.Hour}},
		TotalAvailable: 12,
		HorizonDays:    3,
		Location:       loc,
	}}
	ctrl := NewCalendarController(av, &stubConnections{})
	accountID := uuid.New()

	c, rec := newContext(http.MethodGet, "/api/v1/private/calendar/availability?days=3", accountID)
	require.NoError(t, ctrl.GetAvailability(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, av.horizon)
	assert.Equal(t, accountID, av.account)

	var data struct {
		Slots []struct {
			Start string `json:"start"`
			Label string `json:"label"`
		} `json:"slots"`
		TotalAvailable int    `json:"total_available"`
		Timezone       string `json:"timezone"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &data))
	require.Len(t, data.Slots, 1)
	assert.Equal(t, "2025-03-10T09:00:00-04:00", data.Slots[0].Start)
	assert.Equal(t, "Monday, March 10 at 9:00 AM", data.Slots[0].Label)
	assert.Equal(t, 12, data.TotalAvailable)
	assert.Equal(t, "America/New_York", data.Timezone)
}

func TestGetAvailability_BadDays(t *testing.T) {
	av := &stubAvailability{}
	ctrl := NewCalendarController(av, &stubConnections{})

	c, rec := newContext(http.MethodGet, "/?days=-1", uuid.New())
	require.NoError(t, ctrl.GetAvailability(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, uuid.Nil, av.account)
}

func TestGetAvailability_ErrorMapping(t *testing.T) {
	cases := map[errors.ErrorCode]int{
		errors.ErrCalendarNotConnected: http.StatusNotFound,
		errors.ErrTokenRefreshFailed:   http.StatusFailedDependency,
		errors.ErrCalendarProvider:     http.StatusBadGateway,
	}
	for code, status := range cases {
		ctrl := NewCalendarController(&stubAvailability{err: errors.NewAppError(code, "x", nil)}, &stubConnections{})
		c, rec := newContext(http.MethodGet, "/", uuid.New())
		require.NoError(t, ctrl.GetAvailability(c))
		assert.Equal(t, status, rec.Code, code)
		assert.Equal(t, string(code), decode(t, rec).Code)
	}
}

func TestGetAvailability_RequiresSession(t *testing.T) {
	ctrl := NewCalendarController(&stubAvailability{}, &stubConnections{})
	c, rec := newContext(http.MethodGet, "/", uuid.Nil)
	require.NoError(t, ctrl.GetAvailability(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetConnection_NotConnectedIsNotAnError(t *testing.T) {
	conns := &stubConnections{err: errors.NewAppError(errors.ErrCalendarNotConnected, "calendar is not connected", nil)}
	ctrl := NewCalendarController(&stubAvailability{}, conns)

	c, rec := newContext(http.MethodGet, "/", uuid.New())
	require.NoError(t, ctrl.GetConnection(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":false}`, string(decode(t, rec).Data))
}

func TestOAuthCallback_DeniedConsent(t *testing.T) {
	ctrl := NewCalendarController(&stubAvailability{}, &stubConnections{})
	c, rec := newContext(http.MethodGet, "/?error=access_denied", uuid.Nil)
	require.NoError(t, ctrl.OAuthCallback(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDisconnect(t *testing.T) {
	conns := &stubConnections{}
	ctrl := NewCalendarController(&stubAvailability{}, conns)
	c, rec := newContext(http.MethodDelete, "/", uuid.New())
	require.NoError(t, ctrl.Disconnect(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, conns.disconnected)
}
