package middleware

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/controller"
	"clinic-calendar-api/core/errors"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/core/metrics"
	"clinic-calendar-api/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	controller.BaseController
	jwt     config.JWTConfig
	metrics *metrics.Metrics
}

func NewMiddleware(jwtCfg config.JWTConfig, m *metrics.Metrics) *Middleware {
	return &Middleware{
		BaseController: controller.NewBaseController(),
		jwt:            jwtCfg,
		metrics:        m,
	}
}

// AuthMiddleware validates the dashboard session bearer token and stores its claims
// under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrMissingAuthorizationHeader, "missing authorization header", nil))
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidTokenFormat, "authorization header must be a bearer token", nil))
			}

			claims, appErr := utils.ParseToken(m.jwt, token)
			if appErr != nil {
				return m.ErrorResponse(c, appErr)
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// AssistantSecret guards the voice platform endpoints with a shared secret header.
// An empty secret leaves the endpoints open, matching a platform with no signing configured.
func (m *Middleware) AssistantSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}
			got := c.Request().Header.Get(constants.HeaderAssistantSecret)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				logger.Warn("Middleware:AssistantSecret:Rejected", "path", c.Path(), "remote_ip", c.RealIP())
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized, "invalid assistant secret", nil))
			}
			return next(c)
		}
	}
}

// RequestLogger logs one line per request and counts it by route.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			status := res.Status
			m.metrics.RecordHTTPRequest(req.Method, c.Path(), fmt.Sprintf("%dxx", status/100))

			args := []any{
				"method", req.Method,
				"path", c.Path(),
				"status", status,
				"latency_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
			}
			if status >= 500 {
				logger.Error("HTTP:Request", args...)
			} else {
				logger.Info("HTTP:Request", args...)
			}
			return nil
		}
	}
}
