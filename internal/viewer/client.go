package viewer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rileyhilliard/gatewatch/internal/errors"
	"github.com/rileyhilliard/gatewatch/internal/wire"
)

// Client reads envelopes from a gatewatch endpoint.
type Client struct {
	ws    *websocket.Conn
	codec wire.Codec
}

// Dial connects to url offering the given subprotocol. The codec actually
// used is whatever the server agreed to.
func Dial(ctx context.Context, url, subprotocol string) (*Client, error) {
	d := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
		Subprotocols:     []string{subprotocol},
	}
	ws, _, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Couldn't connect to %s", url),
			"Check that 'gatewatch serve' is running and the URL is right")
	}
	return &Client{ws: ws, codec: wire.ForSubprotocol(ws.Subprotocol())}, nil
}

// Codec returns the negotiated codec.
func (c *Client) Codec() wire.Codec { return c.codec }

// Next blocks until the next message arrives.
func (c *Client) Next() (wire.Message, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return wire.Message{}, err
	}
	return c.codec.Decode(data)
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.ws.Close()
}
