package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"clinic-calendar-api/core/database"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/modules/appointment/entity"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *entity.Appointment) error
	// GetByID returns nil, nil when no appointment with id belongs to the account.
	GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Appointment, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, status entity.Status, limit, offset int) ([]entity.Appointment, error)
	UpdateStatus(ctx context.Context, accountID, id uuid.UUID, from, to entity.Status) (bool, error)
}

type appointmentRepository struct {
	db database.IDatabase
}

func NewAppointmentRepository(db database.IDatabase) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *entity.Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	query := `
		INSERT INTO appointments (id, account_id, caller_name, caller_number, title, calendar_event_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		appt.ID, appt.AccountID, appt.CallerName, appt.CallerNumber, appt.Title,
		appt.CalendarEventID, appt.StartTime, appt.EndTime, appt.Status,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		logger.Error("AppointmentRepository:Create:Error", "error", err, "account_id", appt.AccountID)
		return err
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, accountID, id uuid.UUID) (*entity.Appointment, error) {
	query := `
		SELECT id, account_id, caller_name, caller_number, title, calendar_event_id, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1 AND account_id = $2
	`
	var appt entity.Appointment
	if err := r.db.GetContext(ctx, &appt, query, id, accountID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.Error("AppointmentRepository:GetByID:Error", "error", err, "id", id)
		return nil, err
	}
	return &appt, nil
}

// ListByAccount returns newest first. An empty status lists every status.
func (r *appointmentRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, status entity.Status, limit, offset int) ([]entity.Appointment, error) {
	query := `
		SELECT id, account_id, caller_name, caller_number, title, calendar_event_id, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE account_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY start_time DESC
		LIMIT $3 OFFSET $4
	`
	appointments := []entity.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, accountID, string(status), limit, offset); err != nil {
		logger.Error("AppointmentRepository:ListByAccount:Error", "error", err, "account_id", accountID)
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, accountID, id uuid.UUID, from, to entity.Status) (bool, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND account_id = $3 AND status = $4
	`
	n, err := r.db.ExecRowsContext(ctx, query, to, id, accountID, from)
	if err != nil {
		logger.Error("AppointmentRepository:UpdateStatus:Error", "error", err, "id", id)
		return false, err
	}
	return n == 1, nil
}
