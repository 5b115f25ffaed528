package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"clinic-calendar-api/core/constants"
	"clinic-calendar-api/core/logger"
	"clinic-calendar-api/modules/assistant/dto"
)

const maxForwardResponseBytes = 1 << 20

// Forwarder relays a function call extracted from a webhook to the function-call endpoint.
type Forwarder interface {
	Forward(ctx context.Context, functionName string, params map[string]any) (string, error)
}

type httpForwarder struct {
	client  *http.Client
	url     string
	secret  string
	timeout time.Duration
}

func NewHTTPForwarder(client *http.Client, url, secret string, timeout time.Duration) Forwarder {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}
	return &httpForwarder{client: client, url: url, secret: secret, timeout: timeout}
}

func (f *httpForwarder) Forward(ctx context.Context, functionName string, params map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := json.Marshal(dto.FunctionCallRequest{FunctionName: functionName, Parameters: params})
	if err != nil {
		return "", fmt.Errorf("encode function call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build function call request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.secret != "" {
		req.Header.Set(constants.HeaderAssistantSecret, f.secret)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Error("Forwarder:Forward:Do:Error", "error", err, "function", functionName)
		return "", fmt.Errorf("forward function call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxForwardResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read function call response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		logger.Error("Forwarder:Forward:Status:Error", "status", resp.StatusCode, "function", functionName)
		return "", fmt.Errorf("function call endpoint returned %d", resp.StatusCode)
	}

	var out dto.FunctionCallResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode function call response: %w", err)
	}
	return out.Result, nil
}
