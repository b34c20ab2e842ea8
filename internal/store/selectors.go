package store

import (
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// Selectors are pure reads that join an entity with its related ids.
// They return nil or zero values rather than failing when a relation has
// not yet arrived.

// Whiteboard returns a whiteboard record by id.
func (s *Store) Whiteboard(id model.WhiteboardID) (model.Whiteboard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wb, ok := s.whiteboards[id]
	return wb, ok
}

// Canvas returns a canvas record by id.
func (s *Store) Canvas(id model.CanvasID) (model.Canvas, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	canvas, ok := s.canvases[id]
	return canvas, ok
}

// Shape returns a shape record by id.
func (s *Store) Shape(id model.ShapeID) (model.Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shape, ok := s.shapes[id]
	return shape, ok
}

// ShapesByCanvas returns the shapes indexed under a canvas, skipping
// index entries whose record has not arrived.
func (s *Store) ShapesByCanvas(canvasID model.CanvasID) []model.Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shapesByCanvasLocked(canvasID)
}

func (s *Store) shapesByCanvasLocked(canvasID model.CanvasID) []model.Shape {
	ids := s.shapesByCanvas[canvasID]
	shapes := make([]model.Shape, 0, len(ids))
	for _, id := range ids {
		if shape, ok := s.shapes[id]; ok {
			shapes = append(shapes, shape)
		}
	}
	return shapes
}

// CanvasWithShapes joins a canvas with its shapes. Returns nil until the
// canvas record itself has arrived, even if shapes for it are already
// cached.
func (s *Store) CanvasWithShapes(canvasID model.CanvasID) *model.CanvasView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvasWithShapesLocked(canvasID)
}

func (s *Store) canvasWithShapesLocked(canvasID model.CanvasID) *model.CanvasView {
	canvas, ok := s.canvases[canvasID]
	if !ok {
		return nil
	}

	view := &model.CanvasView{
		Canvas: canvas,
		Shapes: make(map[model.ShapeID]model.ShapeModel),
	}
	view.AllowedUsers = s.allowedUsersByCanvas[canvasID]
	for _, shape := range s.shapesByCanvasLocked(canvasID) {
		view.Shapes[shape.ID] = shape.ShapeModel
	}
	return view
}

// WhiteboardWithCanvases joins a whiteboard with its canvases and their
// shapes. Returns nil until the whiteboard record has arrived.
func (s *Store) WhiteboardWithCanvases(whiteboardID model.WhiteboardID) *model.WhiteboardView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wb, ok := s.whiteboards[whiteboardID]
	if !ok {
		return nil
	}

	view := &model.WhiteboardView{
		ID:       wb.ID,
		Name:     wb.Name,
		Canvases: []model.CanvasView{},
	}
	for _, canvasID := range s.canvasesByWhiteboard[whiteboardID] {
		if canvasView := s.canvasWithShapesLocked(canvasID); canvasView != nil {
			view.Canvases = append(view.Canvases, *canvasView)
		}
	}
	return view
}

// ChildCanvases returns the known child canvases of a canvas.
func (s *Store) ChildCanvases(canvasID model.CanvasID) []model.Canvas {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.childCanvasesByCanvas[canvasID]
	children := make([]model.Canvas, 0, len(ids))
	for _, id := range ids {
		if canvas, ok := s.canvases[id]; ok {
			children = append(children, canvas)
		}
	}
	return children
}

// ActiveUsers returns the active-user list for a whiteboard.
func (s *Store) ActiveUsers(whiteboardID model.WhiteboardID) []model.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeUsersByWhiteboard[whiteboardID]
}

// CurrentEditor returns the advisory editor marker for a canvas.
func (s *Store) CurrentEditor(canvasID model.CanvasID) (model.ClientID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clientID, ok := s.currentEditorsByCanvas[canvasID]
	return clientID, ok
}

// AllowedUsers returns the allowed-user slice for a canvas; empty means
// the canvas inherits whiteboard-level access.
func (s *Store) AllowedUsers(canvasID model.CanvasID) []model.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.allowedUsersByCanvas[canvasID]
}
