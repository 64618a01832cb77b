// ABOUTME: Error taxonomy for the changex API client
// ABOUTME: Structured API errors plus sentinels for expired and missing sessions

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the API in the body of a failed response.
const (
	// CodeJWTError is returned when the bearer token is expired or its
	// signature does not verify.
	CodeJWTError = "jwt_error"
	// CodeNotAuthorized is returned when the bearer is not accepted for the
	// route, including a refresh token that was rotated concurrently.
	CodeNotAuthorized = "not_authorized_request"
)

var (
	// ErrUnauthenticated means the call produced no result because the
	// session could not be used or renewed. Callers should send the
	// operator back to login; it never means "succeeded with no data".
	ErrUnauthenticated = errors.New("session is not authenticated")

	// ErrNoRefreshToken is returned by Renew when no refresh token is
	// stored. No network call is made in that case.
	ErrNoRefreshToken = errors.New("no refresh token stored")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Route      string `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	switch {
	case e.Code != "" && e.Message != "":
		return fmt.Sprintf("api error %d on %s: %s (%s)", e.StatusCode, e.Route, e.Message, e.Code)
	case e.Code != "":
		return fmt.Sprintf("api error %d on %s: %s", e.StatusCode, e.Route, e.Code)
	default:
		return fmt.Sprintf("api error %d on %s", e.StatusCode, e.Route)
	}
}

// IsSessionExpired reports whether err is an API error whose code says the
// bearer token was rejected. Such errors are recoverable through renewal.
func IsSessionExpired(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeJWTError || apiErr.Code == CodeNotAuthorized
}

// isAuthFailure widens IsSessionExpired with bare 401 responses. Used only
// to classify why a renewal failed.
func isAuthFailure(err error) bool {
	if IsSessionExpired(err) || errors.Is(err, ErrNoRefreshToken) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ErrorCode returns the API error code carried by err, or "".
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}
