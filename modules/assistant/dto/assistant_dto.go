package dto

import "encoding/json"

// FunctionCallRequest is what the voice platform posts when the assistant invokes a tool.
type FunctionCallRequest struct {
	FunctionName string         `json:"function_name"`
	Parameters   map[string]any `json:"parameters"`
}

// FunctionCallResponse carries one sentence for text-to-speech.
type FunctionCallResponse struct {
	Result string `json:"result"`
}

type WebhookEnvelope struct {
	Message WebhookMessage `json:"message"`
}

type WebhookMessage struct {
	Type         string               `json:"type"`
	FunctionCall *WebhookFunctionCall `json:"functionCall,omitempty"`
}

// WebhookFunctionCall holds parameters either as an object or as a JSON encoded string.
type WebhookFunctionCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters"`
}
