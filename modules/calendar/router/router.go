package router

import (
	"clinic-calendar-api/core/middleware"
	"clinic-calendar-api/modules/calendar/controller"

	"github.com/labstack/echo/v4"
)

type CalendarRouter struct {
	controller *controller.CalendarController
}

func NewCalendarRouter(controller *controller.CalendarController) *CalendarRouter {
	return &CalendarRouter{
		controller: controller,
	}
}

func (r *CalendarRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	v1.GET("/public/calendar/oauth/callback", r.controller.OAuthCallback)

	calendarRoutes := v1.Group("/private/calendar")
	calendarRoutes.Use(mw.AuthMiddleware())

	calendarRoutes.GET("/availability", r.controller.GetAvailability)
	calendarRoutes.GET("/connection", r.controller.GetConnection)
	calendarRoutes.GET("/connect", r.controller.Connect)
	calendarRoutes.DELETE("/connection", r.controller.Disconnect)
}
