package transport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rileyhilliard/gatewatch/internal/wire"
)

const (
	// DefaultKeepalive is how long a peer may go without answering a ping
	// before it is dropped.
	DefaultKeepalive = 60 * time.Second
	// maxMessageSize caps inbound frames. Clients have nothing to say.
	maxMessageSize = 512
	// defaultWriteWait applies when a Send context has no deadline.
	defaultWriteWait = 10 * time.Second
)

// Conn is one WebSocket client registered as a broadcast observer.
type Conn struct {
	id     string
	remote string
	ws     *websocket.Conn
	codec  wire.Codec

	// pongWait bounds the silence between pongs. Pings go out at 9/10 of it.
	pongWait time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func newConn(ws *websocket.Conn, remote string, pongWait time.Duration) *Conn {
	return &Conn{
		id:       uuid.NewString(),
		remote:   remote,
		ws:       ws,
		codec:    wire.ForSubprotocol(ws.Subprotocol()),
		pongWait: pongWait,
		done:     make(chan struct{}),
	}
}

func (c *Conn) pingPeriod() time.Duration {
	return c.pongWait * 9 / 10
}

// ID returns the connection's UUID.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the client IP.
func (c *Conn) RemoteAddr() string { return c.remote }

// Codec returns the codec negotiated for this connection.
func (c *Conn) Codec() wire.Codec { return c.codec }

// Send encodes env and writes it as one frame. The write deadline comes
// from ctx. A failed write closes the connection so the read loop ends
// and the observer is unregistered.
func (c *Conn) Send(ctx context.Context, env wire.Envelope) error {
	data, err := c.codec.Encode(env)
	if err != nil {
		return err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteWait)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}

	_ = c.ws.SetWriteDeadline(deadline)
	if err := c.ws.WriteMessage(c.codec.FrameType(), data); err != nil {
		c.close()
		return err
	}
	return nil
}

// readLoop discards inbound messages and returns when the peer goes away
// or misses its pong deadline.
func (c *Conn) readLoop() {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	})
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

// pingLoop keeps the connection alive until it closes.
func (c *Conn) pingLoop() {
	t := time.NewTicker(c.pingPeriod())
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(defaultWriteWait)); err != nil {
				c.close()
				return
			}
		}
	}
}

// close tears down the socket once. Safe to call from any goroutine.
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
		_ = c.ws.Close()
	})
}
