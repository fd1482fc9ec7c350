package proxy

import (
	"net/http"
	"net/url"
	"time"

	"crypto-gate-service/httperrors"
	"crypto-gate-service/request"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/tomakado/websocketproxy"
	"github.com/txix-open/isp-kit/requestid"
)

const (
	requestIdHeader = "x-request-id"
)

// Ws passes websocket sessions through to the monitor so the UI can use a single origin.
type Ws struct {
	target *url.URL
}

func NewWs(address string) (Ws, error) {
	target, err := url.Parse("ws://" + address)
	if err != nil {
		return Ws{}, errors.WithMessage(err, "ws: parse url")
	}
	return Ws{
		target: target,
	}, nil
}

//nolint:mnd
func (ws Ws) Handle(ctx *request.Context) error {
	var resultError error
	proxy := websocketproxy.NewProxy(ws.target)
	proxy.Director = func(incoming *http.Request, out http.Header) {
		out.Set(requestIdHeader, requestid.FromContext(ctx.Context()))
	}
	proxy.Upgrader = &websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			resultError = httperrors.New(
				http.StatusServiceUnavailable,
				"monitor is not available",
				errors.WithMessagef(reason, "ws proxy to %s", ws.target.Host),
			)
		},
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	proxy.ServeHTTP(ctx.ResponseWriter(), ctx.Request())

	return resultError
}
