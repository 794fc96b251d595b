package errorwrapper

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared across the engine.
var (
	// ErrMonitorNotFound indicates a monitor id has no persisted record.
	ErrMonitorNotFound = errors.New("monitor not found")
	// ErrRateLimited indicates the remote site returned 429 after all retries.
	ErrRateLimited = errors.New("rate limited")
	// ErrForbidden indicates the remote site kept returning 403 after retries
	// and alternate URLs were exhausted.
	ErrForbidden = errors.New("access forbidden")
	// ErrPageNotFound indicates the remote site returned 404.
	ErrPageNotFound = errors.New("page not found")
	// ErrUnavailable indicates the remote site returned 503.
	ErrUnavailable = errors.New("service unavailable")
	// ErrInvalidConfiguration indicates configuration issues.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// WrapError wraps an error with additional context information.
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewError creates a new error with a formatted message.
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NetworkError represents network-level failures reaching a URL.
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error for URL '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// NewNetworkError creates a new network error.
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// HTTPError represents a non-OK HTTP response. Unwrap maps well-known status
// codes onto the sentinel errors above so callers can classify with errors.Is.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("HTTP %d error for URL '%s': %s", e.StatusCode, e.URL, e.Message)
	}
	return fmt.Sprintf("HTTP %d error: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrPageNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return nil
	}
}

// NewHTTPErrorWithURL creates a new HTTP error with URL context.
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		URL:        url,
	}
}

// ContentTooLargeError is returned when a response exceeds the configured byte ceiling.
type ContentTooLargeError struct {
	URL   string
	Size  int64
	Limit int64
}

func (e *ContentTooLargeError) Error() string {
	return fmt.Sprintf("content too large for URL '%s': %d bytes (max: %d bytes)", e.URL, e.Size, e.Limit)
}

// NewContentTooLargeError creates a new content-too-large error.
func NewContentTooLargeError(url string, size, limit int64) *ContentTooLargeError {
	return &ContentTooLargeError{URL: url, Size: size, Limit: limit}
}
