package controller

import (
	"net/http"
	"strconv"

	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/controller"
	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/utils"
	"clinic-calendar-api/modules/calendar/dto"
	"clinic-calendar-api/modules/calendar/mapper"
	"clinic-calendar-api/modules/calendar/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	controller.BaseController
	availability service.AvailabilityService
	connections  service.ConnectionService
}

func NewCalendarController(availability service.AvailabilityService, connections service.ConnectionService) *CalendarController {
	return &CalendarController{
		BaseController: controller.NewBaseController(),
		availability:   availability,
		connections:    connections,
	}
}

// GetAvailability returns bookable slots for the signed-in account
// @Summary Available appointment slots
// @Tags Calendar
// @Security BearerAuth
// @Param days query int false "Lookahead horizon in days"
// @Success 200 {object} dto.AvailabilityResponse
// @Router /private/calendar/availability [get]
func (c *CalendarController) GetAvailability(ctx echo.Context) error {
	accountID, appErr := GetAccountIDFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	days := 0
	if raw := ctx.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.ErrorResponse(ctx, errors.NewValidationError("days must be a positive integer", map[string]string{"days": raw}))
		}
		days = n
	}

	result, appErr := c.availability.ComputeAvailability(ctx.Request().Context(), accountID, days)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, mapper.ToAvailabilityResponse(result), "availability computed")
}

// GetConnection reports whether a calendar is connected
// @Summary Calendar connection status
// @Tags Calendar
// @Security BearerAuth
// @Success 200 {object} dto.ConnectionStatusResponse
// @Router /private/calendar/connection [get]
func (c *CalendarController) GetConnection(ctx echo.Context) error {
	accountID, appErr := GetAccountIDFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	cred, appErr := c.connections.Status(ctx.Request().Context(), accountID)
	if appErr != nil {
		if appErr.Code == errors.ErrCalendarNotConnected {
			return c.SuccessResponse(ctx, dto.ToConnectionStatus(nil), "calendar not connected")
		}
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ToConnectionStatus(cred), "calendar connected")
}

// Connect returns the Google consent URL for the signed-in account
// @Summary Start calendar connection
// @Tags Calendar
// @Security BearerAuth
// @Success 200 {object} dto.ConnectURLResponse
// @Router /private/calendar/connect [get]
func (c *CalendarController) Connect(ctx echo.Context) error {
	accountID, appErr := GetAccountIDFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	url, appErr := c.connections.AuthURL(ctx.Request().Context(), accountID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ConnectURLResponse{URL: url}, "open the url to connect your calendar")
}

// OAuthCallback completes the consent flow
// @Summary Google OAuth callback
// @Tags Calendar
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Router /public/calendar/oauth/callback [get]
func (c *CalendarController) OAuthCallback(ctx echo.Context) error {
	if reason := ctx.QueryParam("error"); reason != "" {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrForbidden, "calendar access was not granted: "+reason, nil))
	}

	cred, appErr := c.connections.HandleCallback(ctx.Request().Context(), ctx.QueryParam("state"), ctx.QueryParam("code"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ToConnectionStatus(cred), "calendar connected")
}

// Disconnect removes the stored calendar credential
// @Summary Disconnect calendar
// @Tags Calendar
// @Security BearerAuth
// @Router /private/calendar/connection [delete]
func (c *CalendarController) Disconnect(ctx echo.Context) error {
	accountID, appErr := GetAccountIDFromContext(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	if appErr := c.connections.Disconnect(ctx.Request().Context(), accountID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// GetAccountIDFromContext reads the account set by the auth middleware. The account is never taken from input.
func GetAccountIDFromContext(ctx echo.Context) (uuid.UUID, *errors.AppError) {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok || claims == nil || claims.UserID == uuid.Nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "invalid session", nil)
	}
	return claims.UserID, nil
}
