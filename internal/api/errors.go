package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is returned when the server answers with a non-2xx status.
// Message carries the JSON error body verbatim (compacted) when the body
// parses as JSON, and the numeric status code otherwise.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf(
		"api error (%d) on %s %s: %s",
		e.StatusCode, e.Method, e.Path, e.Message,
	)
}

// NetworkError wraps a transport-level failure: the request never produced
// an HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("executing request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsMethodBlocked reports whether err looks like the server or a proxy
// refusing the HTTP method itself rather than the request content.
func IsMethodBlocked(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return true
	}
	return strings.Contains(apiErr.Message, "No static resource")
}

// IsNetworkError reports whether err is a transport failure. Caller
// cancellation is not treated as one.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}

// IsUnauthorized reports whether the server rejected the credentials.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized ||
		apiErr.StatusCode == http.StatusForbidden
}

// UserMessage extracts the friendliest text available from err for display.
// JSON error bodies with a "message" or "error" field yield that field.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if gjson.Valid(apiErr.Message) {
			for _, field := range []string{"message", "error", "detail"} {
				if v := gjson.Get(apiErr.Message, field); v.Exists() && v.String() != "" {
					return v.String()
				}
			}
		}
		return apiErr.Message
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "cannot reach the marketplace server"
	}

	return err.Error()
}
