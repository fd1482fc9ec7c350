package middleware

import (
	"net/http"

	"crypto-gate-service/request"
)

// Cors allows any origin. Preflight requests are answered here and never reach the handler.
func Cors() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			header := ctx.ResponseWriter().Header()
			header.Set("Access-Control-Allow-Origin", "*")
			header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")
			header.Set("Access-Control-Expose-Headers", "Retry-After, X-Request-Id")

			if ctx.Request().Method == http.MethodOptions {
				ctx.ResponseWriter().WriteHeader(http.StatusNoContent)
				return nil
			}
			return next.Handle(ctx)
		})
	}
}
