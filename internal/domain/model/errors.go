package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by APIError.Is according to its Kind. Callers test
// with errors.Is(err, model.ErrNotFound) and never inspect status codes.
var (
	ErrTransport    = errors.New("transport error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrServer       = errors.New("server error")
)

// ErrorKind classifies a failed backend interaction.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindAuthentication
	KindValidation
	KindNotFound
	KindRateLimited
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAuthentication:
		return ErrUnauthorized
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	case KindRateLimited:
		return ErrRateLimited
	case KindServer:
		return ErrServer
	default:
		return ErrTransport
	}
}

// KindForStatus maps an HTTP status code to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuthentication
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 400 && status < 500:
		return KindValidation
	default:
		return KindServer
	}
}

// APIError is the single error type surfaced by backend interactions. It
// carries a human-readable Message alongside the original cause, so callers
// can display the message without losing the structured detail.
type APIError struct {
	Kind       ErrorKind
	StatusCode int // zero for transport failures
	Method     string
	Path       string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	var msg string
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	} else {
		msg = fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the original cause.
func (e *APIError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *APIError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// WithMessage returns a copy of e whose Message is replaced when e has no
// message of its own. The original error is kept as the cause.
func (e *APIError) WithMessage(fallback string) *APIError {
	cp := *e
	if cp.Message == "" {
		cp.Message = fallback
	}
	return &cp
}

// DisplayMessage returns the message to show a user for err. APIError
// messages are used verbatim; anything else falls back to err.Error().
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
