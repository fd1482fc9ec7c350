package messaging

import (
	"context"
	"net/http"
	"sync"
	"time"

	"crypto-gate-service/httperrors"
	"crypto-gate-service/middleware"
	"crypto-gate-service/request"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
)

type MessageHandler interface {
	HandleMessage(ctx context.Context, sender Sender, data []byte)
}

type ClientObserver interface {
	ClientConnected()
	ClientDisconnected()
}

// Hub keeps the connected UI clients and fans messages out to them.
type Hub struct {
	logger   log.Logger
	observer ClientObserver

	lock    sync.RWMutex
	clients map[string]*Client
}

func NewHub(logger log.Logger, observer ClientObserver) *Hub {
	return &Hub{
		logger:   logger,
		observer: observer,
		clients:  map[string]*Client{},
	}
}

// Endpoint upgrades the request and serves the session until the peer disconnects.
//
//nolint:mnd
func (h *Hub) Endpoint(handler MessageHandler) middleware.Handler {
	return middleware.HandlerFunc(func(ctx *request.Context) error {
		var upgradeErr error
		upgrader := websocket.Upgrader{
			HandshakeTimeout: 5 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
				upgradeErr = httperrors.New(status, "websocket upgrade failed", errors.WithMessage(reason, "ws upgrade"))
			},
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}

		conn, err := upgrader.Upgrade(ctx.ResponseWriter(), ctx.Request(), nil)
		if err != nil {
			if upgradeErr != nil {
				return upgradeErr
			}
			return errors.WithMessage(err, "ws upgrade")
		}

		client := h.register(conn)
		defer h.unregister(client)

		sessionCtx := log.ToContext(ctx.Context(), log.String("clientId", client.id))
		go client.writePump(sessionCtx)
		client.readPump(sessionCtx, handler)
		return nil
	})
}

func (h *Hub) Broadcast(data []byte) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	for _, client := range h.clients {
		client.Send(data)
	}
}

func (h *Hub) Count() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.lock.RLock()
	defer h.lock.RUnlock()

	for _, client := range h.clients {
		client.close()
	}
}

func (h *Hub) register(conn *websocket.Conn) *Client {
	client := &Client{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: h.logger,
	}

	h.lock.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.lock.Unlock()

	h.observer.ClientConnected()
	h.logger.Info(context.Background(), "ws client connected",
		log.String("clientId", client.id),
		log.Int("clients", count),
	)
	return client
}

func (h *Hub) unregister(client *Client) {
	client.close()

	h.lock.Lock()
	delete(h.clients, client.id)
	count := len(h.clients)
	h.lock.Unlock()

	h.observer.ClientDisconnected()
	h.logger.Info(context.Background(), "ws client disconnected",
		log.String("clientId", client.id),
		log.Int("clients", count),
	)
}
