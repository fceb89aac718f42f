package domain

import (
	"fmt"
)

// Status classifies the outcome of a directory operation.
// The zero value is StatusUnknownError so that an envelope nobody filled in
// can never be mistaken for a success.
type Status uint8

const (
	StatusUnknownError Status = iota
	StatusSuccess
	StatusNetworkError
	StatusTimeout
	StatusParseError
	StatusInvalidResponse
	StatusServerError
)

var statusNames = map[Status]string{
	StatusUnknownError:    "unknown_error",
	StatusSuccess:         "success",
	StatusNetworkError:    "network_error",
	StatusTimeout:         "timeout",
	StatusParseError:      "parse_error",
	StatusInvalidResponse: "invalid_response",
	StatusServerError:     "server_error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText renders the status as snake_case text.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the snake_case form written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	for st, name := range statusNames {
		if name == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// Response is the envelope returned by every directory and ranking operation.
// Success is true if and only if Status == StatusSuccess. On failure Payload
// holds its zero value and Error describes what went wrong.
type Response[T any] struct {
	Status  Status `json:"status"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Payload T      `json:"payload"`
}

// OK wraps a successful payload.
func OK[T any](payload T) Response[T] {
	return Response[T]{Status: StatusSuccess, Success: true, Payload: payload}
}

// Fail builds a failed envelope with a zero payload.
func Fail[T any](status Status, msg string) Response[T] {
	if status == StatusSuccess {
		status = StatusUnknownError
	}
	return Response[T]{Status: status, Error: msg}
}

// Forward re-types a failed envelope, keeping its status and message.
func Forward[T, U any](r Response[U]) Response[T] {
	return Fail[T](r.Status, r.Error)
}

// Err converts a failed envelope into a Go error, or nil on success.
func (r Response[T]) Err() error {
	if r.Success {
		return nil
	}
	return &StatusError{Status: r.Status, Message: r.Error}
}

// StatusError carries an envelope failure through APIs that speak error.
type StatusError struct {
	Status  Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return e.Status.String()
	}
	return e.Status.String() + ": " + e.Message
}
