// Package handlers routes decoded client messages to per-operation
// handlers and enforces the apply-after-validate rule: an operation
// either mutates board state and is broadcast, or it is rejected in
// full with an individual_error to its sender.
package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/hub"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/middleware"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/presence"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// Router dispatches inbound messages to the appropriate handler.
type Router struct {
	validator   *protocol.Validator
	limits      *middleware.Limits
	presence    *presence.Tracker
	broadcaster *hub.Broadcaster
	logger      *slog.Logger
}

func NewRouter(
	validator *protocol.Validator,
	limits *middleware.Limits,
	tracker *presence.Tracker,
	broadcaster *hub.Broadcaster,
	logger *slog.Logger,
) *Router {
	return &Router{
		validator:   validator,
		limits:      limits,
		presence:    tracker,
		broadcaster: broadcaster,
		logger:      logger.With("component", "router"),
	}
}

// Route decodes, validates and dispatches one inbound frame. A failed
// operation is reported to the sender only; the connection stays open.
func (r *Router) Route(ctx context.Context, board *hub.Board, sess *hub.Session, frame []byte) {
	msg, err := protocol.DecodeClient(frame)
	if err != nil {
		r.logger.Warn("dropping malformed message", "client_id", sess.ClientID, "error", err)
		r.reject(sess, err)
		return
	}

	// ValidateMessage errors are already ErrProtocol-classified.
	if err := r.validator.ValidateMessage(msg); err != nil {
		r.reject(sess, err)
		return
	}

	// Nothing mutates board state before the handshake: an unregistered
	// session holds no presence entry and no usable identity.
	if _, isRegister := msg.(*protocol.Register); !isRegister && !sess.Registered {
		r.reject(sess, fmt.Errorf("%w: register must be the first message", protocol.ErrProtocol))
		return
	}

	switch m := msg.(type) {
	case *protocol.Register:
		err = r.handleRegister(board, sess, m)
	case *protocol.EditingCanvas:
		err = r.handleEditingCanvas(board, sess, m)
	case *protocol.CreateCanvas:
		err = r.handleCreateCanvas(board, sess, m)
	case *protocol.CreateShapes:
		err = r.handleCreateShapes(board, sess, m)
	case *protocol.UpdateShape:
		err = r.handleUpdateShape(board, sess, m)
	case *protocol.DeleteCanvases:
		err = r.handleDeleteCanvases(board, sess, m)
	case *protocol.UpdateAllowedUsers:
		err = r.handleUpdateAllowedUsers(ctx, board, sess, m)
	default:
		err = fmt.Errorf("%w: unhandled message %T", protocol.ErrProtocol, msg)
	}

	if err != nil {
		r.reject(sess, err)
	}
}

// reject notifies the sender that its operation was refused. Nothing
// was applied and nothing reaches other clients.
func (r *Router) reject(sess *hub.Session, opErr error) {
	r.logger.Info("operation rejected",
		"client_id", sess.ClientID,
		"error", opErr,
	)
	if err := sess.Send(&protocol.IndividualError{
		ClientID: sess.ClientID,
		Message:  opErr.Error(),
	}); err != nil {
		r.logger.Warn("failed to deliver individual error", "client_id", sess.ClientID, "error", err)
	}
}

// Disconnect runs the departure sequence for a closing session:
// presence teardown, then logout / roster / editor broadcasts to the
// clients that remain. Safe to call for never-registered sessions.
func (r *Router) Disconnect(board *hub.Board, sess *hub.Session) {
	board.Leave(sess.ClientID)
	departure := r.presence.UnregisterClient(sess.ClientID)
	if departure.Username == "" {
		return
	}

	r.broadcaster.Broadcast(board, &protocol.ClientLogout{
		ClientID: sess.ClientID,
		Username: departure.Username,
	}, sess.ClientID)
	r.broadcaster.Broadcast(board, &protocol.ActiveUsersUpdate{
		ActiveUsers: departure.ActiveByBoard[sess.WhiteboardID],
	}, sess.ClientID)

	if released := departure.ReleasedByBoard[sess.WhiteboardID]; len(released) > 0 {
		cleared := make(map[model.CanvasID]model.ClientID, len(released))
		for _, canvasID := range released {
			cleared[canvasID] = ""
		}
		r.broadcaster.Broadcast(board, &protocol.CanvasEditorsUpdate{Editors: cleared}, sess.ClientID)
	}
}

func refErr(kind, id string) error {
	return fmt.Errorf("%w: %s %s not found", protocol.ErrInvalidReference, kind, id)
}

// canEditCanvas applies the advisory allowed-users restriction. An
// empty list leaves the canvas open to every whiteboard member.
// Entries match on the stable username: session ids are minted fresh on
// every connect, so a reconnecting creator must still be recognized.
func canEditCanvas(board *hub.Board, canvasID model.CanvasID, sess *hub.Session) error {
	allowed, ok := board.AllowedUsers(canvasID)
	if !ok {
		return fmt.Errorf("%w: canvas %s", protocol.ErrInvalidReference, canvasID)
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, summary := range allowed {
		if summary.Username != "" && summary.Username == sess.Username {
			return nil
		}
		if summary.Username == "" && summary.ClientID == sess.ClientID {
			return nil
		}
	}
	return fmt.Errorf("%w: canvas %s is restricted", protocol.ErrPermissionDenied, canvasID)
}
