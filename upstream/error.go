package upstream

import (
	"fmt"
	"net/http"
)

type Kind int

const (
	KindTransport Kind = iota
	KindUnauthorized
	KindRateLimited
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "upstream_rate_limited"
	case KindUpstream:
		return "upstream_error"
	default:
		return "transport_failure"
	}
}

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return true
	case KindUpstream:
		return e.Status >= http.StatusInternalServerError || e.Status == http.StatusRequestTimeout
	default:
		return false
	}
}

func classifyStatus(status int, body []byte) *Error {
	switch {
	case status == http.StatusUnauthorized:
		return &Error{
			Kind:    KindUnauthorized,
			Status:  status,
			Message: "API key unauthorized, check the upstream API key",
		}
	case status == http.StatusTooManyRequests:
		return &Error{
			Kind:    KindRateLimited,
			Status:  status,
			Message: "upstream rate limit exceeded, please try again later",
		}
	default:
		return &Error{
			Kind:    KindUpstream,
			Status:  status,
			Message: fmt.Sprintf("API error: %d - %s", status, errorMessage(body)),
		}
	}
}
