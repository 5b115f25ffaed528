package controller

import (
	"bytes"
	"encoding/json"
	"net/http"

	"clinic-calendar-api/core/controller"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/modules/assistant/dto"
	"clinic-calendar-api/modules/assistant/service"

	"github.com/labstack/echo/v4"
)

const messageTypeFunctionCall = "function-call"

// AssistantController serves the voice platform. Every answer is HTTP 200 with a spoken result
// so the assistant always has something to say.
type AssistantController struct {
	controller.BaseController
	functions service.FunctionService
	forwarder service.Forwarder
}

func NewAssistantController(functions service.FunctionService, forwarder service.Forwarder) *AssistantController {
	return &AssistantController{
		BaseController: controller.NewBaseController(),
		functions:      functions,
		forwarder:      forwarder,
	}
}

// FunctionCall runs one assistant tool call
// @Summary Assistant function call
// @Tags Assistant
// @Param body body dto.FunctionCallRequest true "Function call"
// @Success 200 {object} dto.FunctionCallResponse
// @Router /assistant/function-call [post]
func (c *AssistantController) FunctionCall(ctx echo.Context) error {
	var req dto.FunctionCallRequest
	if err := ctx.Bind(&req); err != nil {
		logger.Warn("AssistantController:FunctionCall:Bind:Error", "error", err)
		return ctx.JSON(http.StatusOK, dto.FunctionCallResponse{Result: "I'm sorry, I didn't understand that request. Could you try again?"})
	}

	result := c.functions.Call(ctx.Request().Context(), req.FunctionName, req.Parameters)
	return ctx.JSON(http.StatusOK, dto.FunctionCallResponse{Result: result})
}

// Webhook unwraps a provider envelope and relays its function call
// @Summary Assistant webhook
// @Tags Assistant
// @Param body body dto.WebhookEnvelope true "Provider envelope"
// @Success 200 {object} dto.FunctionCallResponse
// @Router /assistant/webhook [post]
func (c *AssistantController) Webhook(ctx echo.Context) error {
	var env dto.WebhookEnvelope
	if err := ctx.Bind(&env); err != nil {
		logger.Warn("AssistantController:Webhook:Bind:Error", "error", err)
		return ctx.JSON(http.StatusOK, map[string]any{})
	}
	if env.Message.Type != messageTypeFunctionCall || env.Message.FunctionCall == nil {
		logger.Debug("AssistantController:Webhook:Ignored", "type", env.Message.Type)
		return ctx.JSON(http.StatusOK, map[string]any{})
	}

	call := env.Message.FunctionCall
	params, err := decodeParameters(call.Parameters)
	if err != nil {
		logger.Warn("AssistantController:Webhook:Parameters:Error", "error", err, "function", call.Name)
		return ctx.JSON(http.StatusOK, dto.FunctionCallResponse{Result: "I'm sorry, I didn't understand that request. Could you try again?"})
	}

	result, err := c.forwarder.Forward(ctx.Request().Context(), call.Name, params)
	if err != nil {
		logger.Error("AssistantController:Webhook:Forward:Error", "error", err, "function", call.Name)
		return ctx.JSON(http.StatusOK, dto.FunctionCallResponse{Result: service.ForwardFailedMessage})
	}
	return ctx.JSON(http.StatusOK, dto.FunctionCallResponse{Result: result})
}

// decodeParameters accepts an object, a JSON string holding an object, or nothing.
func decodeParameters(raw json.RawMessage) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		if inner == "" {
			return map[string]any{}, nil
		}
		raw = []byte(inner)
	}
	params := map[string]any{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	return params, nil
}
