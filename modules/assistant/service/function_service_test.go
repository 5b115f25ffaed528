package service

import (
	"context"
	"testing"
	"time"

	"clinic-calendar-api/core/errors"
	appointmentdto "clinic-calendar-api/modules/appointment/dto"
	appointmententity "clinic-calendar-api/modules/appointment/entity"
	appointmentservice "clinic-calendar-api/modules/appointment/service"
	calendarentity "clinic-calendar-api/modules/calendar/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAvailability struct {
	result  *calendarentity.Availability
	err     *errors.AppError
	account uuid.UUID
	horizon int
}

func (f *fakeAvailability) ComputeAvailability(_ context.Context, accountID uuid.UUID, horizonDays int) (*calendarentity.Availability, *errors.AppError) {
	f.account = accountID
	f.horizon = horizonDays
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeBooking struct {
	err     *errors.AppError
	calls   int
	account uuid.UUID
	req     *appointmentdto.BookAppointmentRequest
}

func (f *fakeBooking) Book(_ context.Context, accountID uuid.UUID, req *appointmentdto.BookAppointmentRequest) (*appointmentservice.BookingResult, *errors.AppError) {
	f.calls++
	f.account = accountID
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &appointmentservice.BookingResult{
		Appointment:  &appointmententity.Appointment{CallerName: req.CallerName, Status: appointmententity.StatusBooked},
		Confirmation: "Monday, March 10, 2025 at 2:00 PM",
	}, nil
}

func newFunctionFixture() (*fakeAvailability, *fakeBooking, FunctionService) {
	av := &fakeAvailability{result: &calendarentity.Availability{
		Slots:          []calendarentity.AvailableSlot{{Start: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}},
		TotalAvailable: 1,
		HorizonDays:    7,
		Location:       time.UTC,
	}}
	bk := &fakeBooking{}
	return av, bk, NewFunctionService(av, bk, 7, 60, nil)
}

func TestCall_CheckAvailabilityAliases(t *testing.T) {
	accountID := uuid.New()
	for _, name := range []string{"check_availability", "get_available_slots", "checkAvailability"} {
		av, _, svc := newFunctionFixture()
		result := svc.Call(context.Background(), name, map[string]any{"user_id": accountID.String()})
		assert.Contains(t, result, "Monday, March 10 at 9:00 AM", name)
		assert.Equal(t, accountID, av.account)
		assert.Equal(t, 7, av.horizon)
	}
}

func TestCall_CheckAvailabilityHorizonOverride(t *testing.T) {
	av, _, svc := newFunctionFixture()
	svc.Call(context.Background(), "check_availability", map[string]any{"user_id": uuid.NewString(), "days": float64(3)})
	assert.Equal(t, 3, av.horizon)
}

func TestCall_NotConnectedIsSpoken(t *testing.T) {
	av, _, svc := newFunctionFixture()
	av.err = errors.NewAppError(errors.ErrCalendarNotConnected, "calendar is not connected", nil)

	result := svc.Call(context.Background(), "check_availability", map[string]any{"user_id": uuid.NewString()})
	assert.Equal(t, SpeakError(av.err), result)
}

func TestCall_BookAppointment(t *testing.T) {
	_, bk, svc := newFunctionFixture()
	accountID := uuid.New()

	result := svc.Call(context.Background(), "bookAppointment", map[string]any{
		"user_id":       accountID.String(),
		"date":          "2025-03-10",
		"time":          "2:00 PM",
		"duration":      "30 minutes",
		"caller_name":   "Jane Doe",
		"caller_number": "+15551234567",
	})
	assert.Equal(t, "You're all set, Jane Doe. Your appointment is booked for Monday, March 10, 2025 at 2:00 PM.", result)
	require.NotNil(t, bk.req)
	assert.Equal(t, accountID, bk.account)
	assert.Equal(t, 30, bk.req.Duration)
	assert.Equal(t, defaultTitle, bk.req.Title)
	assert.Equal(t, "2:00 PM", bk.req.Time)
}

func TestCall_BookAppointmentDefaultsDuration(t *testing.T) {
	_, bk, svc := newFunctionFixture()

	svc.Call(context.Background(), "book_appointment", map[string]any{
		"user_id":      uuid.NewString(),
		"date":         "2025-03-10",
		"time":         "14:00",
		"name":         "Jane Doe",
		"phone_number": float64(15551234567),
		"title":        "Cleaning",
	})
	require.NotNil(t, bk.req)
	assert.Equal(t, 60, bk.req.Duration)
	assert.Equal(t, "15551234567", bk.req.CallerNumber)
	assert.Equal(t, "Cleaning", bk.req.Title)
	assert.Equal(t, "Jane Doe", bk.req.CallerName)
}

func TestCall_BookAppointmentBadDuration(t *testing.T) {
	_, bk, svc := newFunctionFixture()

	result := svc.Call(context.Background(), "book_appointment", map[string]any{
		"user_id":  uuid.NewString(),
		"duration": "an hour",
	})
	assert.Contains(t, result, "appointment length")
	assert.Equal(t, 0, bk.calls)
}

func TestCall_BookingErrorsAreSpoken(t *testing.T) {
	_, bk, svc := newFunctionFixture()
	bk.err = errors.NewAppError(errors.ErrSlotConflict, "taken", nil)

	result := svc.Call(context.Background(), "book_appointment", map[string]any{"user_id": uuid.NewString()})
	assert.Contains(t, result, "no longer available")
}

func TestCall_RejectsUnknownFunctionAndUser(t *testing.T) {
	_, bk, svc := newFunctionFixture()

	assert.Equal(t, sayUnknownFunction, svc.Call(context.Background(), "transfer_call", map[string]any{"user_id": uuid.NewString()}))
	assert.Equal(t, sayUnknownClinic, svc.Call(context.Background(), "book_appointment", map[string]any{"user_id": "clinic-7"}))
	assert.Equal(t, sayUnknownClinic, svc.Call(context.Background(), "book_appointment", nil))
	assert.Equal(t, 0, bk.calls)
}
