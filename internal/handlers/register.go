package handlers

import (
	"github.com/ollykel/WhiteboardEditor-sub000/internal/hub"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// handleRegister attaches an identity to the session, replies with the
// full whiteboard snapshot, and announces the arrival to peers.
func (r *Router) handleRegister(board *hub.Board, sess *hub.Session, msg *protocol.Register) error {
	username := model.Username(r.validator.SanitizeString(string(msg.Username)))
	sess.Username = username
	sess.Registered = true

	activeUsers := r.presence.RegisterClient(sess.ClientID, username, sess.WhiteboardID)

	// Snapshot first: the client discards local state and rebuilds
	// from this message, so it must precede any broadcast it can see.
	if err := sess.Send(&protocol.InitClient{
		ClientID:    sess.ClientID,
		Username:    username,
		ActiveUsers: activeUsers,
		Whiteboard:  board.View(),
	}); err != nil {
		return err
	}

	// The new client learns existing advisory editor markers separately.
	if editors := r.presence.EditorsByWhiteboard(sess.WhiteboardID); len(editors) > 0 {
		if err := sess.Send(&protocol.CanvasEditorsUpdate{Editors: editors}); err != nil {
			return err
		}
	}

	r.broadcaster.Broadcast(board, &protocol.ClientLogin{
		ClientID: sess.ClientID,
		Username: username,
		Color:    r.presence.Color(sess.ClientID),
	}, sess.ClientID)
	r.broadcaster.Broadcast(board, &protocol.ActiveUsersUpdate{
		ActiveUsers: activeUsers,
	}, sess.ClientID)
	return nil
}

// handleEditingCanvas moves or clears the sender's advisory editor
// marker. Markers are last-write-wins and never block edits.
func (r *Router) handleEditingCanvas(board *hub.Board, sess *hub.Session, msg *protocol.EditingCanvas) error {
	delta := make(map[model.CanvasID]model.ClientID)

	// A client edits at most one canvas at a time, so taking a new
	// marker releases any canvas it held before.
	for canvasID, editor := range r.presence.EditorsByWhiteboard(sess.WhiteboardID) {
		if editor == sess.ClientID && canvasID != msg.CanvasID {
			r.presence.ClearCurrentEditor(canvasID)
			delta[canvasID] = ""
		}
	}

	if msg.CanvasID != "" {
		if !board.CanvasExists(msg.CanvasID) {
			return refErr("canvas", string(msg.CanvasID))
		}
		r.presence.SetCurrentEditor(sess.WhiteboardID, msg.CanvasID, sess.ClientID)
		delta[msg.CanvasID] = sess.ClientID
	}

	if len(delta) == 0 {
		return nil
	}
	r.broadcaster.Broadcast(board, &protocol.CanvasEditorsUpdate{Editors: delta}, sess.ClientID)
	return nil
}
