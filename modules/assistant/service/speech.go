package service

import (
	"fmt"
	"sort"
	"strings"

	"clinic-calendar-api/core/errors"
	calendarentity "clinic-calendar-api/modules/calendar/entity"
	calendarservice "clinic-calendar-api/modules/calendar/service"
)

const (
	sayUnknownFunction   = "I'm sorry, I can't help with that request over the phone."
	sayUnknownClinic     = "I'm sorry, I couldn't identify the clinic for this call. Please try again later."
	ForwardFailedMessage = "I'm sorry, I'm having trouble reaching the scheduling system right now. Please try again in a few minutes."
	sayGenericFailure    = "I'm sorry, something went wrong on my end. Please try again."
)

var fieldNames = map[string]string{
	"date":          "date",
	"time":          "time",
	"duration":      "appointment length",
	"title":         "reason for the visit",
	"caller_name":   "name",
	"caller_number": "phone number",
	"status":        "status",
}

// SpeakError turns an error into a sentence the assistant can read to the caller.
func SpeakError(appErr *errors.AppError) string {
	if appErr == nil {
		return sayGenericFailure
	}
	switch appErr.Code {
	case errors.ErrCalendarNotConnected:
		return "I'm sorry, but the clinic's calendar is not connected right now, so I can't check or book appointments. Please call back later."
	case errors.ErrTokenRefreshFailed:
		return "I'm sorry, I'm having trouble accessing the clinic's calendar right now. Please try again a little later."
	case errors.ErrCalendarProvider:
		return "I'm sorry, the calendar service isn't responding right now. Could you try again in a few minutes?"
	case errors.ErrSlotConflict:
		return "I'm sorry, that time is no longer available. Would you like me to check other open times?"
	case errors.ErrPersistence:
		return "I'm sorry, I couldn't reach the clinic's records just now, so nothing was booked. Please try again in a moment."
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
		return speakInvalid(appErr)
	}
	return sayGenericFailure
}

func speakInvalid(appErr *errors.AppError) string {
	if _, ok := appErr.Fields["time"]; ok && strings.Contains(appErr.Message, "future") {
		return "I'm sorry, that time has already passed. Could you choose a time later than now?"
	}
	if len(appErr.Fields) == 0 {
		return "I'm sorry, I didn't catch all of the details. Could you repeat them for me?"
	}
	names := make([]string, 0, len(appErr.Fields))
	for field := range appErr.Fields {
		name, ok := fieldNames[field]
		if !ok {
			name = strings.ReplaceAll(field, "_", " ")
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("I'm sorry, I need a valid %s to book the appointment. Could you please tell me again?", joinSpoken(names))
}

// SpeakAvailability lists the offered slots, mentioning how many more exist when the list was capped.
func SpeakAvailability(av *calendarentity.Availability) string {
	if av == nil || len(av.Slots) == 0 {
		days := 0
		if av != nil {
			days = av.HorizonDays
		}
		return fmt.Sprintf("I'm sorry, there are no open appointments in the next %d days.", days)
	}

	labels := make([]string, 0, len(av.Slots))
	for _, slot := range av.Slots {
		labels = append(labels, calendarservice.FormatSlot(slot.Start, av.Location))
	}

	var b strings.Builder
	b.WriteString("I have the following times available: ")
	b.WriteString(joinSpoken(labels))
	b.WriteString(".")
	if more := av.TotalAvailable - len(av.Slots); more > 0 {
		fmt.Fprintf(&b, " There are %d more openings as well.", more)
	}
	b.WriteString(" Which time works best for you?")
	return b.String()
}

func SpeakBooking(callerName, confirmation string) string {
	name := strings.TrimSpace(callerName)
	if name == "" || strings.Contains(name, "@") {
		return fmt.Sprintf("You're all set. Your appointment is booked for %s.", confirmation)
	}
	return fmt.Sprintf("You're all set, %s. Your appointment is booked for %s.", name, confirmation)
}

// joinSpoken joins items as "a", "a and b" or "a, b, and c".
func joinSpoken(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
