package entity

import (
	"time"

	"clinic-calendar-api/core/entity"

	"github.com/google/uuid"
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo allows booked appointments to finish either way; finished ones are final.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusBooked && (next == StatusCompleted || next == StatusCancelled)
}

// Appointment is a booking whose calendar event was confirmed created before the row was written.
type Appointment struct {
	entity.BaseEntity
	AccountID       uuid.UUID `db:"account_id" json:"account_id"`
	CallerName      string    `db:"caller_name" json:"caller_name"`
	CallerNumber    string    `db:"caller_number" json:"caller_number"`
	Title           string    `db:"title" json:"title"`
	CalendarEventID string    `db:"calendar_event_id" json:"calendar_event_id"`
	StartTime       time.Time `db:"start_time" json:"start_time"`
	EndTime         time.Time `db:"end_time" json:"end_time"`
	Status          Status    `db:"status" json:"status"`
}

func (Appointment) TableName() string {
	return "appointments"
}
