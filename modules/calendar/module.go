package calendar

import (
	"time"

	"clinic-calendar-api/core/cache"
	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/database"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/core/middleware"
	"clinic-calendar-api/core/secret"
	"clinic-calendar-api/modules/calendar/controller"
	"clinic-calendar-api/modules/calendar/provider"
	"clinic-calendar-api/modules/calendar/repository"
	"clinic-calendar-api/modules/calendar/router"
	"clinic-calendar-api/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Module exposes the calendar services other modules build on.
type Module struct {
	Tokens       service.TokenManager
	Availability service.AvailabilityService
	Calendar     provider.CalendarProvider
}

func Init(e *echo.Echo, db database.IDatabase, cache cache.Cache, cfg *config.Config, cipher *secret.TokenCipher, m *metrics.Metrics, mw *middleware.Middleware) *Module {
	repo := repository.NewCredentialRepository(db, cipher)
	oauth := provider.NewGoogleOAuth(cfg.GoogleAPI)
	calendarProvider := provider.NewGoogleCalendar(cfg.GoogleAPI, m)

	tokens := service.NewTokenManager(repo, oauth, cfg.Calendar.RefreshBuffer(), time.Now, m)
	availability := service.NewAvailabilityService(tokens, calendarProvider, cfg.Calendar, cfg.GoogleAPI.CalendarID, time.Now, m)
	connections := service.NewConnectionService(repo, oauth, calendarProvider, cache, cfg.Calendar.OAuthStateTTL, time.Now)

	calendarController := controller.NewCalendarController(availability, connections)
	router.NewCalendarRouter(calendarController).Setup(e, mw)

	return &Module{
		Tokens:       tokens,
		Availability: availability,
		Calendar:     calendarProvider,
	}
}
