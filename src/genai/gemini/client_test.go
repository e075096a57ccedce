package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabsql/collabsql/src/genai"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:  "test-key-0123456789",
		Model:   "gemini-2.0-flash",
		BaseURL: server.URL,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestGenerateContent(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateContentRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "{\"type\":\"info\",\"message\":\"hi\"}"}]}}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
		}`))
	})

	resp, err := client.GenerateContent(context.Background(), &genai.GenerateRequest{Prompt: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "test-key-0123456789", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	assert.Equal(t, "hello", gotBody.Contents[0].Parts[0].Text)

	assert.Equal(t, `{"type":"info","message":"hi"}`, resp.Text)
	assert.Equal(t, "gemini-2.0-flash", resp.Model)
	assert.Equal(t, genai.Usage{PromptTokens: 10, ResponseTokens: 5, TotalTokens: 15}, resp.Usage)
}

func TestGenerateContentModelOverride(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	})

	_, err := client.GenerateContent(context.Background(), &genai.GenerateRequest{
		Model:  "gemini-2.0-flash-lite",
		Prompt: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "/models/gemini-2.0-flash-lite:generateContent", gotPath)
}

func TestGenerateContentQuotaExhausted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.GenerateContent(context.Background(), &genai.GenerateRequest{Prompt: "hello"})
	require.Error(t, err)

	var apiErr *genai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "RESOURCE_EXHAUSTED", apiErr.Status)
	assert.Equal(t, genai.KindQuotaExhausted, apiErr.Kind)
	assert.True(t, apiErr.Kind.Rotatable())
}

func TestGenerateContentModelNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 404, "message": "model not found", "status": "NOT_FOUND"}}`))
	})

	_, err := client.GenerateContent(context.Background(), &genai.GenerateRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.Equal(t, genai.KindModelNotFound, genai.Classify(err))
}

func TestGenerateContentNonJSONError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream unavailable"))
	})

	_, err := client.GenerateContent(context.Background(), &genai.GenerateRequest{Prompt: "hello"})
	require.Error(t, err)

	var apiErr *genai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, genai.KindServerOverloaded, apiErr.Kind)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestGenerateContentEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := client.GenerateContent(context.Background(), &genai.GenerateRequest{Prompt: "hello"})
	require.Error(t, err)

	var apiErr *genai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, genai.KindUnknown, apiErr.Kind)
}
