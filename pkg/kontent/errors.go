package kontent

import (
	"errors"
	"fmt"
)

// Platform error codes the engine cares about. Codes other than
// rate-exceeded are never retried.
const (
	// ErrorCodeRateExceeded is returned with HTTP 429 when the API key
	// runs out of request quota.
	ErrorCodeRateExceeded = 10000
)

// APIError is a Management API error response.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  int    `json:"error_code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != 0 {
		return fmt.Sprintf("management api error (status %d, code %d): %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("management api error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the Management API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// IsRateLimited reports whether err carries the rate-exceeded error code.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == ErrorCodeRateExceeded
}

// IsValidationFailure reports whether err is a 400 the server raised
// against the request content, e.g. publishing a variant that fails
// server-side validation or cancelling a schedule that does not exist.
func IsValidationFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 400
}

// isRetryable implements the retry predicate: 5xx or explicit
// rate-limiting is retryable, any other platform error code is not.
// Transport-level failures (no response at all) are retryable.
func isRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	if apiErr.ErrorCode == ErrorCodeRateExceeded {
		return true
	}
	return apiErr.ErrorCode == 0 && (apiErr.StatusCode == 429 || apiErr.StatusCode >= 500)
}
