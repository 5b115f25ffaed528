package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/metrics"
	appointmentdto "clinic-calendar-api/modules/appointment/dto"
	appointmentservice "clinic-calendar-api/modules/appointment/service"
	calendarservice "clinic-calendar-api/modules/calendar/service"

	"github.com/google/uuid"
)

const (
	FunctionCheckAvailability = "check_availability"
	FunctionBookAppointment   = "book_appointment"

	defaultTitle = "Phone appointment"
)

var functionAliases = map[string]string{
	"check_availability":  FunctionCheckAvailability,
	"get_available_slots": FunctionCheckAvailability,
	"checkAvailability":   FunctionCheckAvailability,
	"book_appointment":    FunctionBookAppointment,
	"bookAppointment":     FunctionBookAppointment,
}

// FunctionService answers assistant tool calls with a sentence for text-to-speech.
// It never returns an error; failures become apologies.
type FunctionService interface {
	Call(ctx context.Context, functionName string, params map[string]any) string
}

type functionService struct {
	availability    calendarservice.AvailabilityService
	booking         appointmentservice.BookingService
	horizonDays     int
	defaultDuration int
	metrics         *metrics.Metrics
}

func NewFunctionService(
	availability calendarservice.AvailabilityService,
	booking appointmentservice.BookingService,
	horizonDays int,
	defaultDuration int,
	m *metrics.Metrics,
) FunctionService {
	return &functionService{
		availability:    availability,
		booking:         booking,
		horizonDays:     horizonDays,
		defaultDuration: defaultDuration,
		metrics:         m,
	}
}

func (s *functionService) Call(ctx context.Context, functionName string, params map[string]any) string {
	name, ok := functionAliases[functionName]
	if !ok {
		logger.Warn("FunctionService:Call:UnknownFunction", "function", functionName)
		s.metrics.RecordAssistantCall("unknown", "unknown_function")
		return sayUnknownFunction
	}

	accountID, err := uuid.Parse(stringParam(params, "user_id"))
	if err != nil {
		logger.Warn("FunctionService:Call:InvalidUserID", "function", name, "error", err)
		s.metrics.RecordAssistantCall(name, "invalid_user")
		return sayUnknownClinic
	}

	switch name {
	case FunctionCheckAvailability:
		return s.checkAvailability(ctx, accountID, params)
	default:
		return s.bookAppointment(ctx, accountID, params)
	}
}

func (s *functionService) checkAvailability(ctx context.Context, accountID uuid.UUID, params map[string]any) string {
	days := s.horizonDays
	if d, ok := intParam(params, "days"); ok && d > 0 {
		days = d
	}

	av, appErr := s.availability.ComputeAvailability(ctx, accountID, days)
	if appErr != nil {
		s.metrics.RecordAssistantCall(FunctionCheckAvailability, string(appErr.Code))
		return SpeakError(appErr)
	}
	s.metrics.RecordAssistantCall(FunctionCheckAvailability, "ok")
	return SpeakAvailability(av)
}

func (s *functionService) bookAppointment(ctx context.Context, accountID uuid.UUID, params map[string]any) string {
	req := &appointmentdto.BookAppointmentRequest{
		Date:         stringParam(params, "date"),
		Time:         stringParam(params, "time"),
		Title:        stringParam(params, "title", "reason"),
		CallerName:   stringParam(params, "caller_name", "name"),
		CallerNumber: stringParam(params, "caller_number", "phone_number", "phone"),
		Description:  stringParam(params, "description", "notes"),
	}
	if req.Title == "" {
		req.Title = defaultTitle
	}
	req.Duration = s.defaultDuration
	if raw, present := params["duration"]; present && raw != nil {
		d, ok := intParam(params, "duration")
		if !ok {
			s.metrics.RecordAssistantCall(FunctionBookAppointment, string(errors.ErrInvalidInput))
			return SpeakError(errors.NewValidationError("duration is not a number", map[string]string{"duration": "must be a number of minutes"}))
		}
		req.Duration = d
	}

	result, appErr := s.booking.Book(ctx, accountID, req)
	if appErr != nil {
		s.metrics.RecordAssistantCall(FunctionBookAppointment, string(appErr.Code))
		return SpeakError(appErr)
	}
	s.metrics.RecordAssistantCall(FunctionBookAppointment, "booked")
	return SpeakBooking(result.Appointment.CallerName, result.Confirmation)
}

// stringParam returns the first non-empty value among keys, rendering numbers as text.
func stringParam(params map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := params[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// intParam accepts JSON numbers and numeric strings such as "30" or "30 minutes".
func intParam(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case string:
		fields := strings.Fields(v)
		if len(fields) == 0 {
			return 0, false
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
