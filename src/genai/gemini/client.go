// Package gemini implements the genai.Provider interface against the Google
// Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/collabsql/collabsql/src/genai"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 30 * time.Second
)

var _ genai.Provider = (*Client)(nil)

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey  string        // Gemini API key
	Model   string        // default model name
	BaseURL string        // API base URL override
	Timeout time.Duration // per-request HTTP timeout
	Logger  *slog.Logger  // logger for debugging
}

// Client is a Gemini REST API client.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Gemini API client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "gemini_client")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// Model returns the model name a request would use.
func (c *Client) Model() string {
	return c.config.Model
}

// generateContentRequest is the Gemini API request body.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateContentResponse is the Gemini API response body.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// errorResponse is the Gemini API error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateContent implements genai.Provider.
func (c *Client) GenerateContent(ctx context.Context, req *genai.GenerateRequest) (*genai.GenerateResponse, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	logger := c.logger.With("method", "GenerateContent", "model", model)
	logger.Debug("sending generation request", "prompt_bytes", len(req.Prompt))

	body, err := json.Marshal(generateContentRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.config.BaseURL, url.PathEscape(model), url.QueryEscape(c.config.APIKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := c.handleError(resp.StatusCode, respBody)
		logger.Warn("received error response",
			"status_code", resp.StatusCode, "kind", apiErr.Kind.String())
		return nil, apiErr
	}

	var result generateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, &genai.APIError{
			StatusCode: resp.StatusCode,
			Message:    "empty response from model",
			Kind:       genai.KindUnknown,
		}
	}

	logger.Info("generation successful",
		"latency", time.Since(start),
		"usage_total", result.UsageMetadata.TotalTokenCount)

	return &genai.GenerateResponse{
		Text:  result.Candidates[0].Content.Parts[0].Text,
		Model: model,
		Usage: genai.Usage{
			PromptTokens:   result.UsageMetadata.PromptTokenCount,
			ResponseTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:    result.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// handleError maps an error response body to a classified APIError.
func (c *Client) handleError(statusCode int, body []byte) *genai.APIError {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &genai.APIError{
			StatusCode: statusCode,
			Message:    string(body),
			Kind:       genai.ClassifyStatus(statusCode, ""),
		}
	}
	return &genai.APIError{
		StatusCode: statusCode,
		Status:     errResp.Error.Status,
		Message:    errResp.Error.Message,
		Kind:       genai.ClassifyStatus(statusCode, errResp.Error.Status),
	}
}
