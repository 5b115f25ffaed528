package service

import (
	"testing"
	"time"

	"clinic-calendar-api/core/errors"
	calendarentity "clinic-calendar-api/modules/calendar/entity"

	"github.com/stretchr/testify/assert"
)

func TestSpeakError_EveryCodeIsPolite(t *testing.T) {
	codes := []errors.ErrorCode{
		errors.ErrCalendarNotConnected,
		errors.ErrTokenRefreshFailed,
		errors.ErrCalendarProvider,
		errors.ErrSlotConflict,
		errors.ErrPersistence,
		errors.ErrInvalidInput,
		errors.ErrInternalServer,
	}
	seen := map[string]bool{}
	for _, code := range codes {
		sentence := SpeakError(errors.NewAppError(code, "x", nil))
		assert.True(t, len(sentence) > 0 && sentence[:9] == "I'm sorry", "code %s: %q", code, sentence)
		seen[sentence] = true
	}
	assert.Len(t, seen, len(codes))
	assert.Contains(t, SpeakError(errors.NewAppError(errors.ErrCalendarNotConnected, "", nil)), "not connected")
}

func TestSpeakError_NamesMissingFields(t *testing.T) {
	sentence := SpeakError(errors.NewValidationError("bad", map[string]string{
		"caller_number": "invalid",
		"date":          "required",
	}))
	assert.Equal(t, "I'm sorry, I need a valid date and phone number to book the appointment. Could you please tell me again?", sentence)

	past := SpeakError(errors.NewValidationError("appointment time must be in the future", map[string]string{"time": "x"}))
	assert.Contains(t, past, "already passed")
}

func TestSpeakAvailability(t *testing.T) {
	loc := time.UTC
	av := &calendarentity.Availability{
		Slots: []calendarentity.AvailableSlot{
			{Start: time.Date(2025, 3, 10, 9, 0, 0, 0, loc)},
			{Start: time.Date(2025, 3, 10, 10, 0, 0, 0, loc)},
			{Start: time.Date(2025, 3, 11, 14, 0, 0, 0, loc)},
		},
		TotalAvailable: 20,
		HorizonDays:    7,
		Location:       loc,
	}

	assert.Equal(t,
		"I have the following times available: Monday, March 10 at 9:00 AM, Monday, March 10 at 10:00 AM, and Tuesday, March 11 at 2:00 PM. There are 17 more openings as well. Which time works best for you?",
		SpeakAvailability(av))

	av.Slots = av.Slots[:1]
	av.TotalAvailable = 1
	assert.Equal(t,
		"I have the following times available: Monday, March 10 at 9:00 AM. Which time works best for you?",
		SpeakAvailability(av))

	assert.Equal(t, "I'm sorry, there are no open appointments in the next 7 days.",
		SpeakAvailability(&calendarentity.Availability{HorizonDays: 7}))
}

func TestSpeakBooking(t *testing.T) {
	assert.Equal(t, "You're all set, Jane Doe. Your appointment is booked for Monday, March 10, 2025 at 2:00 PM.",
		SpeakBooking("Jane Doe", "Monday, March 10, 2025 at 2:00 PM"))
	assert.Equal(t, "You're all set. Your appointment is booked for Monday, March 10, 2025 at 2:00 PM.",
		SpeakBooking("jane@example.test", "Monday, March 10, 2025 at 2:00 PM"))
}
