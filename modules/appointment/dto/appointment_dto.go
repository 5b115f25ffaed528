package dto

import (
	"time"

	"clinic-calendar-api/modules/appointment/entity"
)

// BookAppointmentRequest is a slot request as entered by staff or relayed by the voice assistant.
// Date is YYYY-MM-DD and Time is a wall-clock time in the clinic timezone.
type BookAppointmentRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Duration     int    `json:"duration"` // minutes
	Title        string `json:"title"`
	CallerName   string `json:"caller_name"`
	CallerNumber string `json:"caller_number"`
	Description  string `json:"description,omitempty"`
}

type AppointmentResponse struct {
	ID              string    `json:"id"`
	CallerName      string    `json:"caller_name"`
	CallerNumber    string    `json:"caller_number"`
	Title           string    `json:"title"`
	CalendarEventID string    `json:"calendar_event_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BookAppointmentResponse struct {
	Appointment  AppointmentResponse `json:"appointment"`
	Confirmation string              `json:"confirmation"`
	EventLink    string              `json:"event_link,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func ToAppointmentResponse(a *entity.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID.String(),
		CallerName:      a.CallerName,
		CallerNumber:    a.CallerNumber,
		Title:           a.Title,
		CalendarEventID: a.CalendarEventID,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
