package assistant

import (
	"net/http"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/core/middleware"
	appointmentservice "clinic-calendar-api/modules/appointment/service"
	"clinic-calendar-api/modules/assistant/controller"
	"clinic-calendar-api/modules/assistant/router"
	"clinic-calendar-api/modules/assistant/service"
	"clinic-calendar-api/modules/calendar"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, cfg *config.Config, cal *calendar.Module, booking appointmentservice.BookingService, m *metrics.Metrics, mw *middleware.Middleware) {
	functions := service.NewFunctionService(cal.Availability, booking, cfg.Assistant.HorizonDays, cfg.Calendar.SlotDurationMinutes, m)
	forwarder := service.NewHTTPForwarder(&http.Client{}, cfg.Assistant.FunctionCallURL, cfg.Assistant.Secret, cfg.Assistant.RequestTimeout)

	ctrl := controller.NewAssistantController(functions, forwarder)
	router.NewAssistantRouter(ctrl, cfg.Assistant.Secret).Setup(e, mw)
}
