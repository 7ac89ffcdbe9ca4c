package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why an API call failed.
type Kind int

const (
	// KindTransport means the request never produced a response
	// (DNS, connection, TLS, timeout, cancellation).
	KindTransport Kind = iota + 1
	// KindStatus means the service answered with an unexpected HTTP status.
	KindStatus
	// KindDecode means the response body was not the expected JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every Client operation. No data accompanies an Error.
type Error struct {
	// Op names the operation, e.g. "list indexes".
	Op   string
	Kind Kind
	// StatusCode is set for KindStatus and KindDecode.
	StatusCode int
	// Body holds the (truncated) response body for KindStatus.
	Body string
	Err  error
}

const maxErrorBody = 2048

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Body != "" {
			return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage renders the error the way it is shown to the user:
// "Error: <status> <body>" for status failures, "Error: <cause>" otherwise.
func (e *Error) UserMessage() string {
	if e.Kind == KindStatus {
		if e.Body != "" {
			return fmt.Sprintf("Error: %d %s", e.StatusCode, e.Body)
		}
		return fmt.Sprintf("Error: %d", e.StatusCode)
	}
	return fmt.Sprintf("Error: %v", e.Err)
}

// KindOf returns the Kind of an *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsStatus reports whether err is a status failure with the given code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindStatus && apiErr.StatusCode == code
}

// IsNotFound reports whether the service answered 404.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
