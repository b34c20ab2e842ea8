// Package client implements the editor-side half of the sync protocol:
// a websocket messenger, and an engine that applies optimistic local
// drafts to the entity store and reconciles them against server echoes.
package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// Messenger sends client messages toward the server. Implementations
// must be safe for concurrent use.
type Messenger interface {
	Send(msg protocol.ClientMessage) error
	Close() error
}

// SocketMessenger is the gorilla-backed Messenger used against a live
// server.
type SocketMessenger struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Dial connects to a whiteboard endpoint. token may be empty when the
// server runs without authentication.
func Dial(ctx context.Context, url, token string) (*SocketMessenger, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &SocketMessenger{conn: conn}, nil
}

func (m *SocketMessenger) Send(msg protocol.ClientMessage) error {
	frame, err := protocol.EncodeClient(msg)
	if err != nil {
		return err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return m.conn.WriteMessage(websocket.TextMessage, frame)
}

// Listen reads server frames and hands each to the handler until the
// connection closes.
func (m *SocketMessenger) Listen(handler func(frame []byte)) error {
	for {
		_, frame, err := m.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: %s", protocol.ErrTransportFailure, err.Error())
		}
		handler(frame)
	}
}

func (m *SocketMessenger) Close() error {
	return m.conn.Close()
}
