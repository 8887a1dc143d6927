package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind buckets backend failures into categories the HTTP layer can map
// to a status code and a user-safe message.
type ErrorKind string

const (
	KindAuth    ErrorKind = "auth"
	KindQuota   ErrorKind = "quota"
	KindNetwork ErrorKind = "network"
	KindUnknown ErrorKind = "unknown"
)

// BackendError wraps a provider failure. The raw provider error is kept for
// logs; UserMessage is what callers may show to end users.
type BackendError struct {
	Backend string
	Kind    ErrorKind
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// UserMessage returns a message safe to surface to the client. Provider
// details (keys, URLs, raw responses) never leak through here.
func (e *BackendError) UserMessage() string {
	switch e.Kind {
	case KindAuth:
		return "the AI service is not configured correctly, please contact the administrator"
	case KindQuota, KindNetwork:
		return "the AI service is temporarily unavailable, please try again later"
	default:
		return "the AI assistant could not process your request"
	}
}

func wrapBackendError(backend string, err error) *BackendError {
	return &BackendError{Backend: backend, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "authentication"):
		return KindAuth
	case strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "overloaded"):
		return KindQuota
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "dial") ||
		strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return KindNetwork
	default:
		return KindUnknown
	}
}
