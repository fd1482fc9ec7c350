package domain

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrCacheMiss        = errors.New("response not found in cache")
	ErrRateLimited      = errors.New("rate limit exceeded")
	ErrUnsupportedValue = errors.New("unsupported value")
)

type ValidationError struct {
	Param  string
	Reason string
}

func NewRequiredParamError(params ...string) ValidationError {
	return ValidationError{Param: joinParams(params), Reason: "required"}
}

func (e ValidationError) Error() string {
	if e.Reason == "required" {
		return fmt.Sprintf("%s parameter is required", e.Param)
	}
	return fmt.Sprintf("%s parameter is invalid: %s", e.Param, e.Reason)
}

type RateLimitError struct {
	Result RateLimitResult
}

func (e *RateLimitError) Error() string {
	if e.Result.Scope == MonthScope {
		return fmt.Sprintf("monthly rate limit exceeded, resets at %s", e.Result.ResetDate.Format(time.RFC3339))
	}
	return fmt.Sprintf("rate limit exceeded, try after %dms", e.Result.RetryAfter.Milliseconds())
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

func joinParams(params []string) string {
	switch len(params) {
	case 0:
		return "unknown"
	case 1:
		return params[0]
	}
	result := params[0]
	for _, p := range params[1 : len(params)-1] {
		result += ", " + p
	}
	return result + " and " + params[len(params)-1]
}
