package directory

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrThrottled    = errors.New("throttled")
	ErrTimeout      = errors.New("timeout")
	ErrUpstream     = errors.New("upstream error")
	ErrNotSupported = errors.New("not supported")
)

type wrapError struct {
	underlying error
	msg        string
	cause      error
}

var _ error = (*wrapError)(nil)

// NewError wraps cause under one of the sentinel errors of this package.
func NewError(underlying error, msg string, cause error) error {
	return &wrapError{
		underlying: underlying,
		msg:        msg,
		cause:      cause,
	}
}

// NewStatusError classifies an upstream HTTP status code.
func NewStatusError(statusCode int, msg string, cause error) error {
	return NewError(classifyStatus(statusCode), msg, cause)
}

// NewUpstreamError wraps a failed upstream call, keeping context deadline
// failures apart from the rest.
func NewUpstreamError(msg string, cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return NewError(ErrTimeout, msg, cause)
	}

	return NewError(ErrUpstream, msg, cause)
}

func classifyStatus(statusCode int) error {
	switch statusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrForbidden
	case http.StatusTooManyRequests:
		return ErrThrottled
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrTimeout
	default:
		return ErrUpstream
	}
}

func (err *wrapError) Error() string {
	if err == nil {
		return "(*wrapError)(nil)"
	}
	message := err.underlying.Error() + ": " + err.msg
	if err.cause != nil {
		message += ": " + err.cause.Error()
	}
	return message
}

func (err *wrapError) Unwrap() []error {
	if err.cause == nil {
		return []error{err.underlying}
	}
	return []error{err.underlying, err.cause}
}
