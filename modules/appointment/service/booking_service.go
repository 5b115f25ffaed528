package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/modules/appointment/dto"
	"clinic-calendar-api/modules/appointment/entity"
	"clinic-calendar-api/modules/appointment/repository"
	"clinic-calendar-api/modules/calendar/provider"
	calendarservice "clinic-calendar-api/modules/calendar/service"

	"github.com/google/uuid"
)

const compensationTimeout = 10 * time.Second

type BookingResult struct {
	Appointment  *entity.Appointment
	Confirmation string
	EventLink    string
}

type BookingService interface {
	// Book validates the request, re-checks the slot, creates the calendar event and then
	// records the appointment. If recording fails the event is deleted again.
	Book(ctx context.Context, accountID uuid.UUID, req *dto.BookAppointmentRequest) (*BookingResult, *errors.AppError)
}

type bookingService struct {
	tokens     calendarservice.TokenManager
	calendar   provider.CalendarProvider
	repo       repository.AppointmentRepository
	cfg        config.CalendarConfig
	calendarID string
	now        func() time.Time
	metrics    *metrics.Metrics
}

func NewBookingService(
	tokens calendarservice.TokenManager,
	calendar provider.CalendarProvider,
	repo repository.AppointmentRepository,
	cfg config.CalendarConfig,
	calendarID string,
	now func() time.Time,
	m *metrics.Metrics,
) BookingService {
	if now == nil {
		now = time.Now
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &bookingService{
		tokens:     tokens,
		calendar:   calendar,
		repo:       repo,
		cfg:        cfg,
		calendarID: calendarID,
		now:        now,
		metrics:    m,
	}
}

func (s *bookingService) Book(ctx context.Context, accountID uuid.UUID, req *dto.BookAppointmentRequest) (*BookingResult, *errors.AppError) {
	result, appErr := s.book(ctx, accountID, req)
	if appErr != nil {
		s.metrics.RecordBooking(string(appErr.Code))
		return nil, appErr
	}
	s.metrics.RecordBooking(string(entity.StatusBooked))
	return result, nil
}

func (s *bookingService) book(ctx context.Context, accountID uuid.UUID, req *dto.BookAppointmentRequest) (*BookingResult, *errors.AppError) {
	loc := s.cfg.Location()

	valid, appErr := validate(req, s.now(), loc)
	if appErr != nil {
		logger.Info("BookingService:Book:Invalid", "account_id", accountID, "fields", appErr.Fields)
		return nil, appErr
	}

	token, appErr := s.tokens.GetValidToken(ctx, accountID)
	if appErr != nil {
		return nil, appErr
	}

	busy, err := s.calendar.FreeBusy(ctx, token, s.calendarID, valid.start, valid.end)
	if err != nil {
		logger.Error("BookingService:Book:FreeBusy:Error", "error", err, "account_id", accountID)
		return nil, errors.NewAppError(errors.ErrCalendarProvider, "could not confirm the slot with the calendar", err)
	}
	if calendarservice.HasConflict(valid.start, valid.end, busy) {
		logger.Info("BookingService:Book:Conflict", "account_id", accountID, "start", valid.start)
		return nil, errors.NewAppError(errors.ErrSlotConflict, "that time is no longer available", nil)
	}

	event, err := s.calendar.CreateEvent(ctx, token, provider.EventInput{
		CalendarID:     s.calendarID,
		Summary:        strings.TrimSpace(req.Title),
		Description:    s.description(req, valid.callerNumber),
		Start:          valid.start,
		End:            valid.end,
		TimeZone:       loc.String(),
		AttendeeEmails: s.attendees(req.CallerName),
	})
	if err != nil {
		logger.Error("BookingService:Book:CreateEvent:Error", "error", err, "account_id", accountID)
		return nil, errors.NewAppError(errors.ErrCalendarProvider, "could not create the calendar event", err)
	}

	appt := &entity.Appointment{
		AccountID:       accountID,
		CallerName:      strings.TrimSpace(req.CallerName),
		CallerNumber:    valid.callerNumber,
		Title:           strings.TrimSpace(req.Title),
		CalendarEventID: event.ID,
		StartTime:       valid.start,
		EndTime:         valid.end,
		Status:          entity.StatusBooked,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		logger.Error("BookingService:Book:Create:Error", "error", err, "account_id", accountID, "event_id", event.ID)
		s.compensate(ctx, accountID, token, event.ID)
		return nil, errors.NewAppError(errors.ErrPersistence, "the appointment could not be saved", err)
	}

	logger.Info("BookingService:Book:Success", "account_id", accountID, "appointment_id", appt.ID, "event_id", event.ID)
	return &BookingResult{
		Appointment:  appt,
		Confirmation: calendarservice.FormatDateTime(valid.start, loc),
		EventLink:    event.HTMLLink,
	}, nil
}

// compensate deletes the event created for a booking that could not be recorded.
// Its own failure is logged only.
func (s *bookingService) compensate(ctx context.Context, accountID uuid.UUID, token, eventID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	err := s.calendar.DeleteEvent(ctx, token, s.calendarID, eventID)
	s.metrics.RecordCompensation(err)
	if err != nil {
		logger.Error("BookingService:Compensate:DeleteEvent:Error", "error", err, "account_id", accountID, "event_id", eventID)
		return
	}
	logger.Warn("BookingService:Compensate:EventDeleted", "account_id", accountID, "event_id", eventID)
}

func (s *bookingService) description(req *dto.BookAppointmentRequest, number string) string {
	if d := strings.TrimSpace(req.Description); d != "" {
		return d
	}
	return fmt.Sprintf("Caller: %s\nPhone: %s", strings.TrimSpace(req.CallerName), number)
}

func (s *bookingService) attendees(callerName string) []string {
	name := strings.TrimSpace(callerName)
	if s.cfg.InviteEmailCallers && strings.Contains(name, "@") {
		return []string{name}
	}
	return nil
}
