package router

import (
	"clinic-calendar-api/core/middleware"
	"clinic-calendar-api/modules/appointment/controller"

	"github.com/labstack/echo/v4"
)

type AppointmentRouter struct {
	controller *controller.AppointmentController
}

func NewAppointmentRouter(controller *controller.AppointmentController) *AppointmentRouter {
	return &AppointmentRouter{controller: controller}
}

func (r *AppointmentRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	private := e.Group("/api/v1/private", mw.AuthMiddleware())

	private.POST("/calendar/book", r.controller.Book)

	appointments := private.Group("/appointments")
	appointments.GET("", r.controller.List)
	appointments.PATCH("/:id/status", r.controller.UpdateStatus)
}
