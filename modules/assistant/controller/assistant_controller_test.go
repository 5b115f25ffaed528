package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-calendar-api/core/config"
	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/middleware"
	"clinic-calendar-api/modules/assistant/dto"
	"clinic-calendar-api/modules/assistant/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingFunctions struct {
	name   string
	params map[string]any
}

func (r *recordingFunctions) Call(_ context.Context, name string, params map[string]any) string {
	r.name = name
	r.params = params
	return "spoken:" + name
}

type stubForwarder struct {
	name   string
	params map[string]any
	err    error
}

func (s *stubForwarder) Forward(_ context.Context, name string, params map[string]any) (string, error) {
	s.name = name
	s.params = params
	if s.err != nil {
		return "", s.err
	}
	return "forwarded:" + name, nil
}

func newTestServer(secret string, fn service.FunctionService, fwd service.Forwarder) *echo.Echo {
	e := echo.New()
	mw := middleware.NewMiddleware(config.JWTConfig{Secret: "test"}, nil)
	ctrl := NewAssistantController(fn, fwd)
	group := e.Group("/api/v1/assistant", mw.AssistantSecret(secret))
	group.POST("/function-call", ctrl.FunctionCall)
	group.POST("/webhook", ctrl.Webhook)
	return e
}

func post(e *echo.Echo, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.FunctionCallResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Result
}

func TestFunctionCall_ReturnsSpokenResult(t *testing.T) {
	fn := &recordingFunctions{}
	e := newTestServer("", fn, &stubForwarder{})

	rec := post(e, "/api/v1/assistant/function-call",
		`{"function_name":"check_availability","parameters":{"user_id":"u-1"}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spoken:check_availability", decodeResult(t, rec))
	assert.Equal(t, "u-1", fn.params["user_id"])
}

func TestFunctionCall_MalformedBodyStillSpeaks(t *testing.T) {
	e := newTestServer("", &recordingFunctions{}, &stubForwarder{})

	rec := post(e, "/api/v1/assistant/function-call", `{"function_name":`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeResult(t, rec), "I'm sorry")
}

func TestFunctionCall_RequiresSecretWhenConfigured(t *testing.T) {
	fn := &recordingFunctions{}
	e := newTestServer("shared", fn, &stubForwarder{})
	body := `{"function_name":"check_availability","parameters":{}}`

	rec := post(e, "/api/v1/assistant/function-call", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, fn.name)

	rec = post(e, "/api/v1/assistant/function-call", body, map[string]string{constants.HeaderAssistantSecret: "shared"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_ForwardsObjectParameters(t *testing.T) {
	fwd := &stubForwarder{}
	e := newTestServer("", &recordingFunctions{}, fwd)

	rec := post(e, "/api/v1/assistant/webhook",
		`{"message":{"type":"function-call","functionCall":{"name":"book_appointment","parameters":{"user_id":"u-1","duration":30}}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "forwarded:book_appointment", decodeResult(t, rec))
	assert.Equal(t, "book_appointment", fwd.name)
	assert.Equal(t, "u-1", fwd.params["user_id"])
	assert.Equal(t, float64(30), fwd.params["duration"])
}

func TestWebhook_ForwardsStringParameters(t *testing.T) {
	fwd := &stubForwarder{}
	e := newTestServer("", &recordingFunctions{}, fwd)

	rec := post(e, "/api/v1/assistant/webhook",
		`{"message":{"type":"function-call","functionCall":{"name":"checkAvailability","parameters":"{\"user_id\":\"u-2\"}"}}}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-2", fwd.params["user_id"])
}

func TestWebhook_IgnoresOtherMessages(t *testing.T) {
	fwd := &stubForwarder{}
	e := newTestServer("", &recordingFunctions{}, fwd)

	rec := post(e, "/api/v1/assistant/webhook", `{"message":{"type":"status-update"}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.Empty(t, fwd.name)
}

func TestWebhook_ForwardFailureApologizes(t *testing.T) {
	fwd := &stubForwarder{err: errors.New("connection refused")}
	e := newTestServer("", &recordingFunctions{}, fwd)

	rec := post(e, "/api/v1/assistant/webhook",
		`{"message":{"type":"function-call","functionCall":{"name":"book_appointment","parameters":{}}}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ForwardFailedMessage, decodeResult(t, rec))
}

func TestDecodeParameters(t *testing.T) {
	params, err := decodeParameters(nil)
	require.NoError(t, err)
	assert.Empty(t, params)

	params, err = decodeParameters(json.RawMessage(`""`))
	require.NoError(t, err)
	assert.Empty(t, params)

	_, err = decodeParameters(json.RawMessage(`"not json"`))
	assert.Error(t, err)

	_, err = decodeParameters(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}
