package controller

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"crypto-gate-service/domain"
	"crypto-gate-service/httperrors"
	"crypto-gate-service/upstream"
	"github.com/pkg/errors"
)

func mapError(err error) error {
	validation := domain.ValidationError{}
	if errors.As(err, &validation) {
		return httperrors.New(http.StatusBadRequest, validation.Error(), err)
	}

	rateLimit := &domain.RateLimitError{}
	if errors.As(err, &rateLimit) {
		return rateLimitError(rateLimit.Result, err)
	}

	upstreamErr := &upstream.Error{}
	if errors.As(err, &upstreamErr) {
		return upstreamError(upstreamErr, err)
	}

	return httperrors.New(http.StatusInternalServerError, "internal service error", err)
}

func rateLimitError(result domain.RateLimitResult, err error) httperrors.HttpError {
	if result.Scope == domain.MonthScope {
		retryAfter := seconds(time.Until(result.ResetDate))
		return httperrors.New(http.StatusTooManyRequests, "Monthly rate limit exceeded", err).
			WithField("message", "Monthly API limit reached").
			WithField("resetDate", result.ResetDate.UTC().Format(time.RFC3339)).
			WithHeader("Retry-After", strconv.Itoa(retryAfter))
	}
	resetIn := seconds(result.RetryAfter)
	return httperrors.New(http.StatusTooManyRequests, "Rate limit exceeded", err).
		WithField("message", "Too many requests, please try again later").
		WithField("resetIn", resetIn).
		WithHeader("Retry-After", strconv.Itoa(resetIn))
}

func upstreamError(upstreamErr *upstream.Error, err error) httperrors.HttpError {
	switch upstreamErr.Kind {
	case upstream.KindUnauthorized:
		return httperrors.New(http.StatusUnauthorized, upstreamErr.Message, err)
	case upstream.KindRateLimited:
		return httperrors.New(http.StatusTooManyRequests, upstreamErr.Message, err)
	case upstream.KindUpstream:
		status := upstreamErr.Status
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return httperrors.New(status, upstreamErr.Message, err)
	default:
		return httperrors.New(http.StatusServiceUnavailable, "Request failed: "+upstreamErr.Message, err)
	}
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
