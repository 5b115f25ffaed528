package controller

import (
	"strconv"

	"clinic-calendar-api/core/controller"
	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/modules/appointment/dto"
	"clinic-calendar-api/modules/appointment/service"
	calendarcontroller "clinic-calendar-api/modules/calendar/controller"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AppointmentController struct {
	controller.BaseController
	booking      service.BookingService
	appointments service.AppointmentService
}

func NewAppointmentController(booking service.BookingService, appointments service.AppointmentService) *AppointmentController {
	return &AppointmentController{
		BaseController: controller.NewBaseController(),
		booking:        booking,
		appointments:   appointments,
	}
}

// Book creates an appointment in a free slot
// @Summary Book appointment
// @Tags Appointments
// @Security BearerAuth
// @Param body body dto.BookAppointmentRequest true "Slot request"
// @Success 201 {object} dto.BookAppointmentResponse
// @Router /private/calendar/book [post]
func (c *AppointmentController) Book(ctx echo.Context) error {
	accountID, appErr := calendarcontroller.GetAccountIDFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	var req dto.BookAppointmentRequest
	if err := ctx.Bind(&req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	result, appErr := c.booking.Book(ctx.Request().Context(), accountID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, dto.BookAppointmentResponse{
		Appointment:  dto.ToAppointmentResponse(result.Appointment),
		Confirmation: result.Confirmation,
		EventLink:    result.EventLink,
	}, "appointment booked for "+result.Confirmation)
}

// List returns the account's appointments
// @Summary List appointments
// @Tags Appointments
// @Security BearerAuth
// @Param status query string false "booked, completed or cancelled"
// @Success 200 {object} dto.AppointmentListResponse
// @Router /private/appointments [get]
func (c *AppointmentController) List(ctx echo.Context) error {
	accountID, appErr := calendarcontroller.GetAccountIDFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	offset, _ := strconv.Atoi(ctx.QueryParam("offset"))

	items, appErr := c.appointments.List(ctx.Request().Context(), accountID, ctx.QueryParam("status"), limit, offset)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp := dto.AppointmentListResponse{Appointments: make([]dto.AppointmentResponse, 0, len(items))}
	for i := range items {
		resp.Appointments = append(resp.Appointments, dto.ToAppointmentResponse(&items[i]))
	}
	return c.SuccessResponse(ctx, resp, "appointments")
}

// UpdateStatus marks an appointment completed or cancelled
// @Summary Update appointment status
// @Tags Appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param body body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} dto.AppointmentResponse
// @Router /private/appointments/{id}/status [patch]
func (c *AppointmentController) UpdateStatus(ctx echo.Context) error {
	accountID, appErr := calendarcontroller.GetAccountIDFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrNotFound, "appointment not found", nil))
	}

	var req dto.UpdateStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInvalidRequestData, "invalid request body", err))
	}

	appt, appErr := c.appointments.UpdateStatus(ctx.Request().Context(), accountID, id, req.Status)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ToAppointmentResponse(appt), "appointment updated")
}
