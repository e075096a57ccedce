package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoProvider indicates no provider client could be constructed, usually
// because no credentials were configured.
var ErrNoProvider = errors.New("no model provider configured")

// ErrorKind classifies a provider failure by how the caller should react.
// The classification is produced by the provider client from structured
// status information, not by substring matching on error text.
type ErrorKind int

const (
	// KindUnknown covers failures with no useful classification. Terminal.
	KindUnknown ErrorKind = iota
	// KindRateLimited is an HTTP 429 without a quota signal. Rotatable.
	KindRateLimited
	// KindQuotaExhausted is a RESOURCE_EXHAUSTED quota failure. Rotatable.
	KindQuotaExhausted
	// KindServerOverloaded is an HTTP 503. Rotatable.
	KindServerOverloaded
	// KindServerError is an HTTP 500. Rotatable.
	KindServerError
	// KindDeadlineExceeded is a timed-out call. Rotatable.
	KindDeadlineExceeded
	// KindModelNotFound is an HTTP 404 or unknown-model failure. Not
	// rotatable; the caller should fall back to another model instead.
	KindModelNotFound
	// KindAuthFailed is a bad or revoked credential. Terminal.
	KindAuthFailed
	// KindBadRequest is a malformed request. Terminal.
	KindBadRequest
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindQuotaExhausted:
		return "quota_exhausted"
	case KindServerOverloaded:
		return "server_overloaded"
	case KindServerError:
		return "server_error"
	case KindDeadlineExceeded:
		return "deadline_exceeded"
	case KindModelNotFound:
		return "model_not_found"
	case KindAuthFailed:
		return "auth_failed"
	case KindBadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// Rotatable reports whether the failure is worth retrying against the next
// credential in the pool.
func (k ErrorKind) Rotatable() bool {
	switch k {
	case KindRateLimited, KindQuotaExhausted, KindServerOverloaded, KindServerError, KindDeadlineExceeded:
		return true
	}
	return false
}

// APIError is a structured error response from a model provider.
type APIError struct {
	StatusCode int
	Status     string // provider status token, e.g. "RESOURCE_EXHAUSTED"
	Message    string
	Kind       ErrorKind
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("provider error %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("provider error %d: %s", e.StatusCode, e.Message)
}

// ClassifyStatus maps an HTTP status code plus the provider's status token to
// an ErrorKind.
func ClassifyStatus(statusCode int, status string) ErrorKind {
	switch statusCode {
	case http.StatusTooManyRequests:
		if strings.EqualFold(status, "RESOURCE_EXHAUSTED") {
			return KindQuotaExhausted
		}
		return KindRateLimited
	case http.StatusServiceUnavailable:
		return KindServerOverloaded
	case http.StatusInternalServerError:
		return KindServerError
	case http.StatusNotFound:
		return KindModelNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuthFailed
	case http.StatusBadRequest:
		if strings.EqualFold(status, "RESOURCE_EXHAUSTED") {
			// Some quota failures arrive disguised as 400s.
			return KindQuotaExhausted
		}
		return KindBadRequest
	case http.StatusGatewayTimeout:
		return KindDeadlineExceeded
	}
	if statusCode >= 500 && statusCode < 600 {
		return KindServerError
	}
	return KindUnknown
}

// Classify extracts the ErrorKind from any error returned by a Provider.
// Context deadline expiry counts as a rotatable timeout.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindDeadlineExceeded
	}
	return KindUnknown
}
