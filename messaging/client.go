package messaging

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/txix-open/isp-kit/log"
)

const (
	sendBufferSize = 64
	maxMessageSize = 64 * 1024
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait / 2
)

// Sender is a connected peer messages can be addressed to.
type Sender interface {
	Id() string
	Send(data []byte) bool
}

type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger log.Logger
}

func (c *Client) Id() string {
	return c.id
}

// Send queues a message without blocking. A slow peer loses messages instead of stalling the caller.
func (c *Client) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.Warn(context.Background(), "ws client send buffer is full, message dropped", log.String("clientId", c.id))
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				c.logger.Debug(ctx, "ws write failed", log.String("error", err.Error()))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				c.close()
				return
			}
		}
	}
}

// readPump blocks until the peer goes away or the client is closed.
// Every inbound message is handled in its own goroutine so a slow action does not block reads.
func (c *Client) readPump(ctx context.Context, handler MessageHandler) {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug(ctx, "ws read failed", log.String("error", err.Error()))
			}
			return
		}
		go handler.HandleMessage(ctx, c, msg)
	}
}
