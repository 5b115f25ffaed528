package service

import (
	"context"

	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/modules/appointment/entity"
	"clinic-calendar-api/modules/appointment/repository"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AppointmentService interface {
	List(ctx context.Context, accountID uuid.UUID, status string, limit, offset int) ([]entity.Appointment, *errors.AppError)
	// UpdateStatus moves a booked appointment to completed or cancelled. The calendar event is left as is.
	UpdateStatus(ctx context.Context, accountID, id uuid.UUID, status string) (*entity.Appointment, *errors.AppError)
}

type appointmentService struct {
	repo repository.AppointmentRepository
}

func NewAppointmentService(repo repository.AppointmentRepository) AppointmentService {
	return &appointmentService{repo: repo}
}

func (s *appointmentService) List(ctx context.Context, accountID uuid.UUID, status string, limit, offset int) ([]entity.Appointment, *errors.AppError) {
	filter := entity.Status(status)
	if status != "" && !filter.Valid() {
		return nil, errors.NewValidationError("unknown appointment status", map[string]string{"status": status})
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset = max(offset, 0)

	items, err := s.repo.ListByAccount(ctx, accountID, filter, limit, offset)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrPersistence, "failed to list appointments", err)
	}
	return items, nil
}

func (s *appointmentService) UpdateStatus(ctx context.Context, accountID, id uuid.UUID, status string) (*entity.Appointment, *errors.AppError) {
	next := entity.Status(status)
	if !next.Valid() {
		return nil, errors.NewValidationError("unknown appointment status", map[string]string{"status": status})
	}

	appt, err := s.repo.GetByID(ctx, accountID, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrPersistence, "failed to load appointment", err)
	}
	if appt == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "appointment not found", nil)
	}
	if !appt.Status.CanTransitionTo(next) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "appointment is already "+string(appt.Status), nil)
	}

	updated, err := s.repo.UpdateStatus(ctx, accountID, id, appt.Status, next)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrPersistence, "failed to update appointment", err)
	}
	if !updated {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "appointment was changed by another request", nil)
	}

	logger.Info("AppointmentService:UpdateStatus:Success", "appointment_id", id, "from", appt.Status, "to", next)
	appt.Status = next
	return appt, nil
}
