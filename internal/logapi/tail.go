package logapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrUnexpectedClose reports that the server ended a tail connection. The
// server never closes a tail on its own, so every close it initiates is
// abnormal.
var ErrUnexpectedClose = errors.New("connection closed unexpectedly")

// TailConn is a live subscription to a stream.
type TailConn interface {
	// ReadFrame blocks until the next payload arrives.
	ReadFrame() ([]byte, error)
	// Close releases the connection. It is safe to call more than once.
	Close() error
}

const closeWriteTimeout = time.Second

// DialTail opens the websocket for /api/tail/{stream}.
func (c *Client) DialTail(ctx context.Context, stream string) (TailConn, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	stream = strings.TrimSpace(stream)
	if stream == "" {
		return nil, fmt.Errorf("stream required")
	}
	target := c.tailURL(stream)

	header := http.Header{}
	header.Set("User-Agent", c.userAgent)
	conn, resp, err := c.dialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial tail %s: %w", stream, &StatusError{Path: "/api/tail/" + stream, Code: resp.StatusCode})
		}
		return nil, fmt.Errorf("dial tail %s: %w", stream, err)
	}
	return &wsTailConn{conn: conn}, nil
}

func (c *Client) tailURL(stream string) string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/api/tail/" + stream
	u.RawPath = "/api/tail/" + url.PathEscape(stream)
	return u.String()
}

type wsTailConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (w *wsTailConn) ReadFrame() ([]byte, error) {
	for {
		kind, payload, err := w.conn.ReadMessage()
		if err != nil {
			return nil, classifyReadError(err)
		}
		if kind == websocket.TextMessage || kind == websocket.BinaryMessage {
			return payload, nil
		}
	}
}

func (w *wsTailConn) Close() error {
	w.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteTimeout))
		w.closeErr = w.conn.Close()
	})
	return w.closeErr
}

func classifyReadError(err error) error {
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr):
		return fmt.Errorf("%w (code %d)", ErrUnexpectedClose, closeErr.Code)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrUnexpectedClose
	default:
		return fmt.Errorf("read frame: %w", err)
	}
}
