// internal/client/ws.go
package client

import (
	"context"
	"fmt"

	"github.com/coder/websocket"
)

// wsConn adapts a coder/websocket connection to the Conn interface.
type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	msgType, data, err := w.c.Read(ctx)
	if err != nil {
		return nil, err
	}
	if msgType != websocket.MessageText {
		return nil, fmt.Errorf("unexpected message type %d", msgType)
	}
	return data, nil
}

func (w *wsConn) Write(ctx context.Context, data []byte) error {
	return w.c.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "bye")
}

// dialWebSocket is the production Dialer: it passes the session token as
// a query parameter since browser WebSocket clients cannot set headers.
func dialWebSocket(ctx context.Context, url, token string) (Conn, error) {
	target := url
	if token != "" {
		target = fmt.Sprintf("%s?token=%s", url, token)
	}
	c, _, err := websocket.Dial(ctx, target, &websocket.DialOptions{
		Subprotocols: []string{"playtable"},
	})
	if err != nil {
		return nil, err
	}
	return &wsConn{c: c}, nil
}
