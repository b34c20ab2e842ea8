package handlers

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/hub"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// canvasShapes adapts one canvas of a board to the shape-count limit
// check.
type canvasShapes struct {
	board    *hub.Board
	canvasID model.CanvasID
}

func (c canvasShapes) ShapeCount() int { return c.board.ShapeCount(c.canvasID) }

// handleCreateShapes commits a batch of drafted shapes under
// server-assigned ids. The echo goes to everyone, sender included, with
// records in the client's original array order: the sender matches them
// positionally against its optimistic temp-id drafts.
func (r *Router) handleCreateShapes(board *hub.Board, sess *hub.Session, msg *protocol.CreateShapes) error {
	if err := canEditCanvas(board, msg.CanvasID, sess); err != nil {
		return err
	}
	if !r.limits.CanAddShapes(canvasShapes{board, msg.CanvasID}, len(msg.Shapes)) {
		return fmt.Errorf("%w: canvas at maximum shape capacity", protocol.ErrInvariantViolation)
	}

	shapes := make([]model.Shape, 0, len(msg.Shapes))
	for _, m := range msg.Shapes {
		shapes = append(shapes, model.Shape{
			ID:           uuid.NewString(),
			CanvasID:     msg.CanvasID,
			WhiteboardID: board.ID,
			ShapeModel:   r.validator.SanitizeShape(m),
		})
	}
	if err := board.AddShapes(msg.CanvasID, shapes); err != nil {
		return err
	}

	r.broadcaster.Broadcast(board, &protocol.ShapesCreated{
		ClientID: sess.ClientID,
		CanvasID: msg.CanvasID,
		Shapes:   shapes,
	}, "")
	return nil
}

// handleUpdateShape replaces one shape record wholesale. Concurrent
// updates to the same shape resolve last-apply-wins in server arrival
// order. The sender already applied its own change, so the broadcast
// excludes it.
func (r *Router) handleUpdateShape(board *hub.Board, sess *hub.Session, msg *protocol.UpdateShape) error {
	if err := canEditCanvas(board, msg.CanvasID, sess); err != nil {
		return err
	}

	sanitized := r.validator.SanitizeShape(msg.Shape)
	if err := board.UpdateShape(msg.CanvasID, msg.ShapeID, sanitized); err != nil {
		return err
	}

	r.broadcaster.Broadcast(board, &protocol.ShapeUpdated{
		ClientID: sess.ClientID,
		CanvasID: msg.CanvasID,
		ShapeID:  msg.ShapeID,
		Shape:    sanitized,
	}, sess.ClientID)
	return nil
}
