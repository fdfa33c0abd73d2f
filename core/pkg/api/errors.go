package api

import (
	"encoding/json"
	"errors"
	"io"
)

// DefaultErrorMessage is used when the backend gives no message
const DefaultErrorMessage = "An error occurred"

// Error is a non-2xx response from the backend
type Error struct {
	StatusCode int                 `json:"status"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the backend
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

func parseError(status int, body io.Reader) *Error {
	var payload struct {
		Status  int                 `json:"status"`
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	// A body that is not JSON still yields an Error with the default message.
	_ = json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&payload)

	e := &Error{StatusCode: status, Message: payload.Message, Errors: payload.Errors}
	if e.Message == "" {
		e.Message = payload.Error
	}
	if e.Message == "" {
		e.Message = DefaultErrorMessage
	}
	return e
}
