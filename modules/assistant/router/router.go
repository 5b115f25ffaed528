package router

import (
	"clinic-calendar-api/core/middleware"
	"clinic-calendar-api/modules/assistant/controller"

	"github.com/labstack/echo/v4"
)

type AssistantRouter struct {
	controller *controller.AssistantController
	secret     string
}

func NewAssistantRouter(controller *controller.AssistantController, secret string) *AssistantRouter {
	return &AssistantRouter{controller: controller, secret: secret}
}

func (r *AssistantRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	assistant := e.Group("/api/v1/assistant", mw.AssistantSecret(r.secret))
	assistant.POST("/function-call", r.controller.FunctionCall)
	assistant.POST("/webhook", r.controller.Webhook)
}
