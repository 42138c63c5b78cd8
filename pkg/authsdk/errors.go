package authsdk

import "fmt"

// APIError is a non-2xx response from the auth service. The message is the
// server's user-visible error string; it never carries internal detail.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authd: %d: %s", e.StatusCode, e.Message)
}

// IsClientError reports whether the failure was caused by the request
// (4xx) rather than the server.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
