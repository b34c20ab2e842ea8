package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/hub"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// handleCreateCanvas records a new canvas under a server-assigned id.
// The confirmation is broadcast to everyone, sender included, so the
// sender learns the canonical id the same way its peers do.
func (r *Router) handleCreateCanvas(board *hub.Board, sess *hub.Session, msg *protocol.CreateCanvas) error {
	allowedUsers := msg.AllowedUsers
	if len(allowedUsers) == 0 {
		// A canvas starts restricted to its creator; the creator widens
		// access explicitly via update_canvas_allowed_users.
		allowedUsers = []model.UserSummary{{ClientID: sess.ClientID, Username: sess.Username}}
	}

	now := time.Now()
	canvas := model.Canvas{
		ID:               uuid.NewString(),
		WhiteboardID:     board.ID,
		ParentCanvasID:   msg.ParentCanvasID,
		Name:             r.validator.SanitizeString(msg.Name),
		Width:            msg.Width,
		Height:           msg.Height,
		AllowedUsers:     allowedUsers,
		TimeCreated:      now,
		TimeLastModified: now,
	}
	if err := board.AddCanvas(canvas); err != nil {
		return err
	}

	r.broadcaster.Broadcast(board, &protocol.CanvasCreated{
		ClientID:       sess.ClientID,
		CanvasID:       canvas.ID,
		Width:          canvas.Width,
		Height:         canvas.Height,
		Name:           canvas.Name,
		ParentCanvasID: canvas.ParentCanvasID,
		AllowedUsers:   allowedUsers,
	}, "")
	return nil
}

// handleDeleteCanvases removes canvases and everything on them. The
// whole batch is checked before any canvas is removed.
func (r *Router) handleDeleteCanvases(board *hub.Board, sess *hub.Session, msg *protocol.DeleteCanvases) error {
	removed, err := board.DeleteCanvases(msg.CanvasIDs)
	if err != nil {
		return err
	}

	// Editor markers on removed canvases are orphaned; clear them for
	// everyone still connected.
	cleared := make(map[model.CanvasID]model.ClientID)
	for _, canvasID := range removed {
		if _, held := r.presence.CurrentEditor(canvasID); held {
			r.presence.ClearCurrentEditor(canvasID)
			cleared[canvasID] = ""
		}
	}

	r.broadcaster.Broadcast(board, &protocol.CanvasesDeleted{
		ClientID:  sess.ClientID,
		CanvasIDs: removed,
	}, sess.ClientID)
	if len(cleared) > 0 {
		r.broadcaster.Broadcast(board, &protocol.CanvasEditorsUpdate{Editors: cleared}, "")
	}
	return nil
}

// handleUpdateAllowedUsers replaces a canvas's allowed-user set. An
// empty set reopens the canvas to all whiteboard collaborators.
func (r *Router) handleUpdateAllowedUsers(_ context.Context, board *hub.Board, sess *hub.Session, msg *protocol.UpdateAllowedUsers) error {
	if err := canEditCanvas(board, msg.CanvasID, sess); err != nil {
		return err
	}
	if err := board.SetAllowedUsers(msg.CanvasID, msg.AllowedUsers); err != nil {
		return err
	}

	r.broadcaster.Broadcast(board, &protocol.AllowedUsersUpdated{
		CanvasID:     msg.CanvasID,
		AllowedUsers: msg.AllowedUsers,
	}, sess.ClientID)
	return nil
}
