package client

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the single duplex connection handle. It is owned exclusively
// by the Client; other components reach the wire only through the
// Client's send API.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Dialer opens a Conn to the collaboration endpoint. The token travels
// as a query parameter on the connection URL.
type Dialer interface {
	Dial(ctx context.Context, endpoint string, token string) (Conn, error)
}

// NewDialer returns the production websocket dialer.
func NewDialer() Dialer {
	return &wsDialer{dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second}}
}

type wsDialer struct {
	dialer *websocket.Dialer
}

func (d *wsDialer) Dial(ctx context.Context, endpoint string, token string) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, wsURL(endpoint, token), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

// wsURL rewrites an http(s) base URL to the ws(s) /ws endpoint and
// appends the bearer token.
func wsURL(endpoint, token string) string {
	u := endpoint
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	u = strings.TrimRight(u, "/")
	if !strings.HasSuffix(u, "/ws") {
		u += "/ws"
	}
	return u + "?token=" + url.QueryEscape(token)
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

func (c *wsConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	// Best-effort close handshake; the read loop unblocks either way.
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}
