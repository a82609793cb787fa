package client

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsRejection returns true if err is an explicit server refusal (4xx) as
// opposed to a transport failure. Both roll back optimistic state; only
// transport failures indicate a connectivity problem.
func IsRejection(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500
	}
	return false
}

// IsUnauthenticated returns true if err is a 401 from the API, meaning the
// ambient session credential was refused.
func IsUnauthenticated(err error) bool {
	return IsStatus(err, 401)
}
