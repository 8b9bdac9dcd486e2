package transport

import (
	"errors"
	"fmt"
)

// Kind classifies transport failures.
type Kind uint8

const (
	// KindNetworkUnavailable means the request never got an HTTP response.
	KindNetworkUnavailable Kind = iota + 1
	// KindServerError means the responder answered with a non-2xx status.
	KindServerError
	// KindMalformedResponse means the body was not the expected JSON.
	KindMalformedResponse
)

// String returns a short label, used for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindServerError:
		return "server_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrNetworkUnavailable = errors.New("chat endpoint unreachable")
	ErrServerError        = errors.New("chat endpoint returned an error status")
	ErrMalformedResponse  = errors.New("chat endpoint returned a malformed response")
)

// Error is a failed exchange with the chat endpoint.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// StatusCode is set for KindServerError.
	StatusCode int
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.sentinel().Error()
	if e.Kind == KindServerError {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	return target == e.sentinel() //nolint:errorlint // Sentinel identity is the point.
}

// sentinel returns the package sentinel for the error kind.
func (e *Error) sentinel() error {
	switch e.Kind {
	case KindServerError:
		return ErrServerError
	case KindMalformedResponse:
		return ErrMalformedResponse
	default:
		return ErrNetworkUnavailable
	}
}

// KindOf returns the kind of a transport error, or zero for other errors.
func KindOf(err error) Kind {
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return transportErr.Kind
	}

	return 0
}
