// Package genai defines the hosted-model boundary: a minimal provider
// interface, the request/response types that cross it, and a typed error
// taxonomy the translation engine uses to decide between key rotation, model
// fallback and giving up.
package genai

import (
	"context"
)

// Provider turns a prompt into text using a hosted large-language model.
type Provider interface {
	// GenerateContent issues a single-turn generation request. Errors are
	// *APIError where the failure came from the remote service.
	GenerateContent(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is a single-turn text generation request.
type GenerateRequest struct {
	// Model overrides the client's configured model when non-empty.
	Model string `json:"model,omitempty"`
	// Prompt is the full rendered instruction prompt.
	Prompt string `json:"prompt"`
}

// GenerateResponse is the raw model output plus token accounting.
type GenerateResponse struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// Usage holds token counts reported by the provider.
type Usage struct {
	PromptTokens   int `json:"prompt_tokens"`
	ResponseTokens int `json:"response_tokens"`
	TotalTokens    int `json:"total_tokens"`
}
