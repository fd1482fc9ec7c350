package middleware

import (
	"time"

	"crypto-gate-service/request"
)

type RequestObserver interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration)
}

func Metrics(observer RequestObserver) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			writer := wrapWriter(ctx)
			start := time.Now()
			err := next.Handle(ctx)
			observer.ObserveRequest(ctx.Endpoint(), writer.StatusCode(), time.Since(start))
			return err
		})
	}
}
