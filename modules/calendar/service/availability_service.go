package service

import (
	"context"
	"time"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/modules/calendar/entity"
	"clinic-calendar-api/modules/calendar/provider"

	"github.com/google/uuid"
)

type AvailabilityService interface {
	// ComputeAvailability returns the first offered slots over horizonDays plus the full count.
	// A horizon of zero or less uses the configured default.
	ComputeAvailability(ctx context.Context, accountID uuid.UUID, horizonDays int) (*entity.Availability, *errors.AppError)
}

type availabilityService struct {
	tokens     TokenManager
	calendar   provider.CalendarProvider
	cfg        config.CalendarConfig
	calendarID string
	now        func() time.Time
	metrics    *metrics.Metrics
}

func NewAvailabilityService(tokens TokenManager, calendar provider.CalendarProvider, cfg config.CalendarConfig, calendarID string, now func() time.Time, m *metrics.Metrics) AvailabilityService {
	if now == nil {
		now = time.Now
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &availabilityService{
		tokens:     tokens,
		calendar:   calendar,
		cfg:        cfg,
		calendarID: calendarID,
		now:        now,
		metrics:    m,
	}
}

func (s *availabilityService) rules() SlotRules {
	return SlotRules{
		Location:     s.cfg.Location(),
		StartHour:    s.cfg.BusinessStartHour,
		EndHour:      s.cfg.BusinessEndHour,
		SlotDuration: s.cfg.SlotDuration(),
	}
}

func (s *availabilityService) horizon(requested int) int {
	h := requested
	if h <= 0 {
		h = s.cfg.HorizonDays
	}
	if s.cfg.MaxHorizonDays > 0 && h > s.cfg.MaxHorizonDays {
		h = s.cfg.MaxHorizonDays
	}
	return h
}

func (s *availabilityService) ComputeAvailability(ctx context.Context, accountID uuid.UUID, horizonDays int) (*entity.Availability, *errors.AppError) {
	horizon := s.horizon(horizonDays)

	token, appErr := s.tokens.GetValidToken(ctx, accountID)
	if appErr != nil {
		s.metrics.RecordAvailability(string(appErr.Code))
		return nil, appErr
	}

	now := s.now()
	busy, err := s.calendar.FreeBusy(ctx, token, s.calendarID, now, now.AddDate(0, 0, horizon))
	if err != nil {
		logger.Error("AvailabilityService:ComputeAvailability:FreeBusy:Error", "error", err, "account_id", accountID)
		s.metrics.RecordAvailability(string(errors.ErrCalendarProvider))
		return nil, errors.NewAppError(errors.ErrCalendarProvider, "could not read calendar availability", err)
	}

	all := GenerateSlots(now, horizon, busy, s.rules())
	offered := all
	if limit := s.cfg.MaxOfferedSlots; limit > 0 && len(offered) > limit {
		offered = offered[:limit]
	}

	logger.Info("AvailabilityService:ComputeAvailability:Success",
		"account_id", accountID,
		"horizon_days", horizon,
		"busy_count", len(busy),
		"total_available", len(all),
	)
	s.metrics.RecordAvailability("ok")

	return &entity.Availability{
		Slots:          offered,
		TotalAvailable: len(all),
		HorizonDays:    horizon,
		Location:       s.cfg.Location(),
	}, nil
}
