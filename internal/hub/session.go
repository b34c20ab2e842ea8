package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// Session is one live websocket connection to a whiteboard.
type Session struct {
	ClientID     model.ClientID
	UserID       model.UserID
	Username     model.Username
	WhiteboardID model.WhiteboardID

	// Registered flips once the register handshake completed. Only the
	// session's own read loop touches it.
	Registered bool

	conn      *websocket.Conn
	writeWait time.Duration
	writeMu   sync.Mutex // gorilla allows one concurrent writer
	limiter   *rate.Limiter
}

// NewSession wraps an upgraded connection. messagesPerSecond/burst
// bound how fast this client may push operations.
func NewSession(conn *websocket.Conn, clientID model.ClientID, userID model.UserID, writeWait time.Duration, messagesPerSecond float64, burst int) *Session {
	return &Session{
		ClientID:  clientID,
		UserID:    userID,
		conn:      conn,
		writeWait: writeWait,
		limiter:   rate.NewLimiter(rate.Limit(messagesPerSecond), burst),
	}
}

// Allow reports whether the client is within its message rate budget.
func (s *Session) Allow() bool {
	return s.limiter.Allow()
}

// Conn exposes the raw connection for the read loop and keepalive.
func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

// Write sends an already-encoded frame.
func (s *Session) Write(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeWait > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	}
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Send encodes and sends a single server message to this client only.
func (s *Session) Send(msg protocol.ServerMessage) error {
	frame, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return s.Write(frame)
}

// Ping sends a control ping frame for keepalive.
func (s *Session) Ping() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeWait))
}

// Close tears down the underlying connection.
func (s *Session) Close() error {
	return s.conn.Close()
}
