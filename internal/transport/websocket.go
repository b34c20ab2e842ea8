// Package transport owns the websocket boundary: upgrade, origin and
// rate checks, bearer authentication, the register-first handshake, and
// the per-connection read loop with keepalive. Everything past the
// boundary speaks decoded protocol messages.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/config"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/handlers"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/hub"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/middleware"
)

// Server accepts websocket connections and runs their read loops.
type Server struct {
	cfg       *config.Config
	hub       *hub.Hub
	router    *handlers.Router
	ipLimiter *middleware.IPRateLimit
	limits    *middleware.Limits
	upgrader  websocket.Upgrader
	logger    *slog.Logger
}

func NewServer(
	cfg *config.Config,
	h *hub.Hub,
	router *handlers.Router,
	ipLimiter *middleware.IPRateLimit,
	limits *middleware.Limits,
	logger *slog.Logger,
) *Server {
	s := &Server{
		cfg:       cfg,
		hub:       h,
		router:    router,
		ipLimiter: ipLimiter,
		limits:    limits,
		logger:    logger.With("component", "transport"),
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range cfg.Server.AllowedOrigins {
				if origin == strings.TrimSpace(allowed) {
					return true
				}
			}
			return false
		},
	}
	return s
}

// GetClientIP extracts the client IP for rate limiting. RemoteAddr
// only: forwarding headers are client-controlled and would let anyone
// dodge the limiter by randomizing them.
func GetClientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// HandleWebSocket upgrades the connection, attaches it to its
// whiteboard and runs the read loop until the client goes away.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)
	if !s.ipLimiter.Allow(clientIP) {
		s.logger.Warn("connection rate limit exceeded", "ip", clientIP)
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	identity, err := authenticate(s.cfg.Server.JWTSecret, r.Header.Get("Authorization"))
	if err != nil {
		// Browsers cannot set headers on websocket dials; accept the
		// token as a query parameter too.
		identity, err = authenticate(s.cfg.Server.JWTSecret, r.URL.Query().Get("token"))
	}
	if err != nil {
		s.logger.Warn("rejected unauthenticated connection", "ip", clientIP)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	whiteboardID := r.URL.Query().Get("whiteboard")
	if whiteboardID == "" {
		http.Error(w, "whiteboard id missing", http.StatusBadRequest)
		return
	}

	board, err := s.hub.GetOrLoad(r.Context(), whiteboardID)
	if err != nil {
		s.logger.Warn("whiteboard unavailable", "whiteboard_id", whiteboardID, "error", err)
		http.Error(w, "whiteboard unavailable", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "ip", clientIP, "error", err)
		return
	}
	defer conn.Close()

	sess := hub.NewSession(
		conn,
		uuid.NewString(),
		identity.UserID,
		s.cfg.Transport.WriteWait,
		s.cfg.Limits.MessagesPerSecond,
		s.cfg.Limits.BurstSize,
	)
	sess.Username = identity.Username
	sess.WhiteboardID = board.ID

	if err := board.Join(sess, s.cfg.Limits.MaxSessionsPerBoard); err != nil {
		s.logger.Warn("join refused", "whiteboard_id", board.ID, "error", err)
		return
	}

	s.logger.Info("client connected",
		"client_id", sess.ClientID,
		"whiteboard_id", board.ID,
		"ip", clientIP,
	)
	s.run(board, sess)
}

// run is the per-connection read loop. It requires register as the
// first frame, then dispatches until the connection dies; the deferred
// disconnect hook keeps presence consistent on abrupt closes.
func (s *Server) run(board *hub.Board, sess *hub.Session) {
	conn := sess.Conn()
	defer s.router.Disconnect(board, sess)

	conn.SetReadLimit(int64(s.cfg.Limits.MaxMessageSize))

	// Register must arrive promptly; an idle unregistered socket is
	// dropped.
	conn.SetReadDeadline(time.Now().Add(s.cfg.Transport.RegisterTimeout))
	_, first, err := conn.ReadMessage()
	if err != nil {
		s.logger.Warn("no register before timeout", "client_id", sess.ClientID, "error", err)
		return
	}
	s.router.Route(context.Background(), board, sess, first)
	if !sess.Registered {
		s.logger.Warn("first frame was not a register, dropping connection", "client_id", sess.ClientID)
		return
	}

	conn.SetReadDeadline(time.Now().Add(s.cfg.Transport.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.Transport.PongWait))
		return nil
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go s.keepalive(sess, stopPing)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			s.logger.Info("connection closed", "client_id", sess.ClientID, "error", err)
			return
		}

		if !s.limits.ValidateMessageSize(len(msg)) {
			s.logger.Warn("oversized message dropped", "client_id", sess.ClientID, "bytes", len(msg))
			continue
		}
		if !sess.Allow() {
			s.logger.Warn("message rate limit exceeded", "client_id", sess.ClientID)
			continue
		}

		s.router.Route(context.Background(), board, sess, msg)
	}
}

// keepalive pings on a cadence comfortably inside the pong deadline.
func (s *Server) keepalive(sess *hub.Session, stop <-chan struct{}) {
	interval := s.cfg.Transport.PongWait * 9 / 10
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := sess.Ping(); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}
