package appointment

import (
	"time"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/database"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/core/middleware"
	"clinic-calendar-api/modules/appointment/controller"
	"clinic-calendar-api/modules/appointment/repository"
	"clinic-calendar-api/modules/appointment/router"
	"clinic-calendar-api/modules/appointment/service"
	"clinic-calendar-api/modules/calendar"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, cfg *config.Config, cal *calendar.Module, m *metrics.Metrics, mw *middleware.Middleware) service.BookingService {
	repo := repository.NewAppointmentRepository(db)
	booking := service.NewBookingService(cal.Tokens, cal.Calendar, repo, cfg.Calendar, cfg.GoogleAPI.CalendarID, time.Now, m)
	appointments := service.NewAppointmentService(repo)

	ctrl := controller.NewAppointmentController(booking, appointments)
	router.NewAppointmentRouter(ctrl).Setup(e, mw)
	return booking
}
