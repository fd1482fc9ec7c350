package middleware

import (
	"net/http"

	"crypto-gate-service/httperrors"
	"crypto-gate-service/request"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

type HttpError interface {
	WriteError(w http.ResponseWriter) error
	StatusCode() int
}

func ErrorHandler(logger log.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			err := next.Handle(ctx)
			if err == nil {
				return nil
			}

			var httpErr HttpError
			if !errors.As(err, &httpErr) {
				httpErr = httperrors.New(http.StatusInternalServerError, "internal service error", err)
			}

			if httpErr.StatusCode() >= http.StatusInternalServerError {
				logger.Error(ctx.Context(), err)
			} else {
				logger.Info(ctx.Context(), "request rejected", log.String("error", err.Error()))
			}

			return httpErr.WriteError(ctx.ResponseWriter())
		})
	}
}
