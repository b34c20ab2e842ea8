package hub

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/directory"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

// Board holds the authoritative live state of one whiteboard: its
// canvases, the shapes on each canvas, and the sessions attached to it.
type Board struct {
	ID model.WhiteboardID

	mu          sync.RWMutex
	name        string
	permissions []model.PermissionEntry
	canvases    map[model.CanvasID]model.Canvas
	canvasOrder []model.CanvasID
	shapes      map[model.CanvasID]map[model.ShapeID]model.Shape
	shapeOrder  map[model.CanvasID][]model.ShapeID
	sessions    map[model.ClientID]*Session

	lastActive time.Time
	createdAt  time.Time
}

func newBoard(snapshot *directory.Snapshot) *Board {
	b := &Board{
		ID:          snapshot.Whiteboard.ID,
		name:        snapshot.Whiteboard.Name,
		permissions: snapshot.Whiteboard.Permissions,
		canvases:    make(map[model.CanvasID]model.Canvas),
		shapes:      make(map[model.CanvasID]map[model.ShapeID]model.Shape),
		shapeOrder:  make(map[model.CanvasID][]model.ShapeID),
		sessions:    make(map[model.ClientID]*Session),
		lastActive:  time.Now(),
		createdAt:   time.Now(),
	}
	for _, cs := range snapshot.Canvases {
		b.canvases[cs.Canvas.ID] = cs.Canvas
		b.canvasOrder = append(b.canvasOrder, cs.Canvas.ID)
		b.shapes[cs.Canvas.ID] = make(map[model.ShapeID]model.Shape)
		for _, shape := range cs.Shapes {
			b.shapes[cs.Canvas.ID][shape.ID] = shape
			b.shapeOrder[cs.Canvas.ID] = append(b.shapeOrder[cs.Canvas.ID], shape.ID)
		}
	}
	return b
}

// Join attaches a session to the board.
func (b *Board) Join(s *Session, maxSessions int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.sessions) >= maxSessions {
		return errors.New("whiteboard is at maximum session capacity")
	}

	b.sessions[s.ClientID] = s
	b.lastActive = time.Now()
	return nil
}

// Leave detaches a session from the board.
func (b *Board) Leave(clientID model.ClientID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.sessions, clientID)
	b.lastActive = time.Now()
}

// Sessions returns a snapshot of attached sessions.
func (b *Board) Sessions() map[model.ClientID]*Session {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := make(map[model.ClientID]*Session, len(b.sessions))
	for id, s := range b.sessions {
		snapshot[id] = s
	}
	return snapshot
}

// SessionCount returns the number of attached sessions.
func (b *Board) SessionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.sessions)
}

// Permissions returns the board's current permission list.
func (b *Board) Permissions() []model.PermissionEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]model.PermissionEntry, len(b.permissions))
	copy(out, b.permissions)
	return out
}

// SetPermissions replaces the board's permission list.
func (b *Board) SetPermissions(permissions []model.PermissionEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.permissions = permissions
	b.lastActive = time.Now()
}

// AddCanvas records a new canvas on the board.
func (b *Board) AddCanvas(canvas model.Canvas) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if canvas.ParentCanvasID != "" {
		if _, ok := b.canvases[canvas.ParentCanvasID]; !ok {
			return fmt.Errorf("%w: parent canvas %s", protocol.ErrInvalidReference, canvas.ParentCanvasID)
		}
	}

	b.canvases[canvas.ID] = canvas
	b.canvasOrder = append(b.canvasOrder, canvas.ID)
	b.shapes[canvas.ID] = make(map[model.ShapeID]model.Shape)
	b.lastActive = time.Now()
	return nil
}

// CanvasExists reports whether a canvas id is known to the board.
func (b *Board) CanvasExists(canvasID model.CanvasID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.canvases[canvasID]
	return ok
}

// AllowedUsers returns the canvas's editor restriction list. A nil
// list means the canvas is open to every member of the whiteboard.
func (b *Board) AllowedUsers(canvasID model.CanvasID) ([]model.UserSummary, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	canvas, ok := b.canvases[canvasID]
	if !ok {
		return nil, false
	}
	return canvas.AllowedUsers, true
}

// SetAllowedUsers replaces the canvas's editor restriction list.
func (b *Board) SetAllowedUsers(canvasID model.CanvasID, users []model.UserSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	canvas, ok := b.canvases[canvasID]
	if !ok {
		return fmt.Errorf("%w: canvas %s", protocol.ErrInvalidReference, canvasID)
	}
	canvas.AllowedUsers = users
	canvas.TimeLastModified = time.Now()
	b.canvases[canvasID] = canvas
	b.lastActive = time.Now()
	return nil
}

// ShapeCount returns the number of shapes on one canvas.
func (b *Board) ShapeCount(canvasID model.CanvasID) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.shapes[canvasID])
}

// AddShapes appends shapes to a canvas in the given order.
func (b *Board) AddShapes(canvasID model.CanvasID, shapes []model.Shape) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.canvases[canvasID]; !ok {
		return fmt.Errorf("%w: canvas %s", protocol.ErrInvalidReference, canvasID)
	}

	for _, shape := range shapes {
		if _, seen := b.shapes[canvasID][shape.ID]; !seen {
			b.shapeOrder[canvasID] = append(b.shapeOrder[canvasID], shape.ID)
		}
		b.shapes[canvasID][shape.ID] = shape
	}
	b.touchCanvasLocked(canvasID)
	b.lastActive = time.Now()
	return nil
}

// UpdateShape replaces a shape's full record. The incoming state wins
// wholesale; there is no field-level merging.
func (b *Board) UpdateShape(canvasID model.CanvasID, shapeID model.ShapeID, m model.ShapeModel) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.canvases[canvasID]; !ok {
		return fmt.Errorf("%w: canvas %s", protocol.ErrInvalidReference, canvasID)
	}
	if _, ok := b.shapes[canvasID][shapeID]; !ok {
		return fmt.Errorf("%w: shape %s", protocol.ErrInvalidReference, shapeID)
	}

	b.shapes[canvasID][shapeID] = model.Shape{
		ID:           shapeID,
		CanvasID:     canvasID,
		WhiteboardID: b.ID,
		ShapeModel:   m,
	}
	b.touchCanvasLocked(canvasID)
	b.lastActive = time.Now()
	return nil
}

// DeleteCanvases removes canvases, their shapes, and recursively any
// child canvases. It returns the full set of removed canvas ids and an
// error if any requested id is unknown.
func (b *Board) DeleteCanvases(canvasIDs []model.CanvasID) ([]model.CanvasID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range canvasIDs {
		if _, ok := b.canvases[id]; !ok {
			return nil, fmt.Errorf("%w: canvas %s", protocol.ErrInvalidReference, id)
		}
	}

	doomed := make(map[model.CanvasID]bool)
	queue := append([]model.CanvasID(nil), canvasIDs...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if doomed[id] {
			continue
		}
		doomed[id] = true
		for childID, canvas := range b.canvases {
			if canvas.ParentCanvasID == id {
				queue = append(queue, childID)
			}
		}
	}

	removed := make([]model.CanvasID, 0, len(doomed))
	remaining := b.canvasOrder[:0]
	for _, id := range b.canvasOrder {
		if doomed[id] {
			removed = append(removed, id)
			delete(b.canvases, id)
			delete(b.shapes, id)
			delete(b.shapeOrder, id)
		} else {
			remaining = append(remaining, id)
		}
	}
	b.canvasOrder = remaining
	b.lastActive = time.Now()
	return removed, nil
}

// View builds the full whiteboard state for a newly joined client.
func (b *Board) View() model.WhiteboardView {
	b.mu.RLock()
	defer b.mu.RUnlock()

	view := model.WhiteboardView{ID: b.ID, Name: b.name}
	for _, canvasID := range b.canvasOrder {
		cv := model.CanvasView{
			Canvas: b.canvases[canvasID],
			Shapes: make(map[model.ShapeID]model.ShapeModel, len(b.shapes[canvasID])),
		}
		for id, shape := range b.shapes[canvasID] {
			cv.Shapes[id] = shape.ShapeModel
		}
		view.Canvases = append(view.Canvases, cv)
	}
	return view
}

func (b *Board) touchCanvasLocked(canvasID model.CanvasID) {
	canvas := b.canvases[canvasID]
	canvas.TimeLastModified = time.Now()
	b.canvases[canvasID] = canvas
}
