package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoSession is returned by the token source when an authenticated call is
// attempted without a logged-in session.
var ErrNoSession = errors.New("no active session")

// APIError is a non-2xx response from the backend, carrying the HTTP status
// and the server-provided message when the body had one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// StatusMessage returns the server message of an APIError, or "" when err is
// not an APIError or carried no message.
func StatusMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// errorBody matches the two error shapes the backend emits.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return &APIError{Status: status, Message: eb.Message}
		}
		if eb.Error != "" {
			return &APIError{Status: status, Message: eb.Error}
		}
	}
	return &APIError{Status: status}
}
