// Package store is the client-side normalized entity cache. Whiteboards,
// canvases and shapes are kept in flat maps keyed by id, with derived
// one-to-many indices (canvasesByWhiteboard, shapesByCanvas,
// childCanvasesByCanvas) maintained atomically with every entity write.
//
// The store only merges well-formed data; it never validates business
// rules and never returns domain errors. Messages may arrive out of
// dependency order, so a shape can land before its canvas is known: it
// is stored and indexed immediately, but excluded from joined views
// until the canvas record arrives.
package store

import (
	"sync"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

type Store struct {
	mu sync.RWMutex

	whiteboards map[model.WhiteboardID]model.Whiteboard
	canvases    map[model.CanvasID]model.Canvas
	shapes      map[model.ShapeID]model.Shape

	// derived indices, updated under the same lock as the entity maps
	canvasesByWhiteboard  map[model.WhiteboardID][]model.CanvasID
	shapesByCanvas        map[model.CanvasID][]model.ShapeID
	childCanvasesByCanvas map[model.CanvasID][]model.CanvasID

	// presence-adjacent slices
	activeUsersByWhiteboard map[model.WhiteboardID][]model.UserSummary
	currentEditorsByCanvas  map[model.CanvasID]model.ClientID
	allowedUsersByCanvas    map[model.CanvasID][]model.UserSummary
}

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.whiteboards = make(map[model.WhiteboardID]model.Whiteboard)
	s.canvases = make(map[model.CanvasID]model.Canvas)
	s.shapes = make(map[model.ShapeID]model.Shape)
	s.canvasesByWhiteboard = make(map[model.WhiteboardID][]model.CanvasID)
	s.shapesByCanvas = make(map[model.CanvasID][]model.ShapeID)
	s.childCanvasesByCanvas = make(map[model.CanvasID][]model.CanvasID)
	s.activeUsersByWhiteboard = make(map[model.WhiteboardID][]model.UserSummary)
	s.currentEditorsByCanvas = make(map[model.CanvasID]model.ClientID)
	s.allowedUsersByCanvas = make(map[model.CanvasID][]model.UserSummary)
}

// Reset discards all cached state. Called when a fresh init_client
// snapshot arrives: stale local state is dropped, never diffed.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// SetWhiteboards overwrites whiteboard records by id. Re-applying the
// same payload is a no-op beyond overwriting with identical data.
func (s *Store) SetWhiteboards(whiteboards map[model.WhiteboardID]model.Whiteboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, wb := range whiteboards {
		s.whiteboards[id] = wb
	}
}

// SetCanvases overwrites canvas records by id and re-indexes each canvas
// under its whiteboard and parent canvas in the same critical section.
func (s *Store) SetCanvases(canvases map[model.CanvasID]model.Canvas) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, canvas := range canvases {
		// re-setting under a different parent unlinks the old index entry
		if prev, ok := s.canvases[id]; ok {
			if prev.WhiteboardID != canvas.WhiteboardID {
				s.canvasesByWhiteboard[prev.WhiteboardID] = removeID(s.canvasesByWhiteboard[prev.WhiteboardID], id)
			}
			if prev.ParentCanvasID != "" && prev.ParentCanvasID != canvas.ParentCanvasID {
				s.childCanvasesByCanvas[prev.ParentCanvasID] = removeID(s.childCanvasesByCanvas[prev.ParentCanvasID], id)
			}
		}

		s.canvases[id] = canvas
		s.canvasesByWhiteboard[canvas.WhiteboardID] = appendUnique(s.canvasesByWhiteboard[canvas.WhiteboardID], id)
		if canvas.ParentCanvasID != "" {
			s.childCanvasesByCanvas[canvas.ParentCanvasID] = appendUnique(s.childCanvasesByCanvas[canvas.ParentCanvasID], id)
		}
		if canvas.AllowedUsers != nil {
			s.allowedUsersByCanvas[id] = canvas.AllowedUsers
		}
	}
}

// SetShapes overwrites shape records by id and indexes each under its
// canvas. The canvas itself need not be known yet.
func (s *Store) SetShapes(shapes map[model.ShapeID]model.Shape) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, shape := range shapes {
		if prev, ok := s.shapes[id]; ok && prev.CanvasID != shape.CanvasID {
			s.shapesByCanvas[prev.CanvasID] = removeID(s.shapesByCanvas[prev.CanvasID], id)
		}
		s.shapes[id] = shape
		s.shapesByCanvas[shape.CanvasID] = appendUnique(s.shapesByCanvas[shape.CanvasID], id)
	}
}

// AddShapes is the merge-append form of SetShapes; it never shrinks an
// index, only extends it. With replacement-only records the two are
// equivalent per shape, kept separate to mirror the wire semantics of
// create_shapes vs update_shape.
func (s *Store) AddShapes(shapes map[model.ShapeID]model.Shape) {
	s.SetShapes(shapes)
}

// RemoveShapes deletes shape records and unlinks them from their canvas
// index.
func (s *Store) RemoveShapes(ids []model.ShapeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.removeShapeLocked(id)
	}
}

func (s *Store) removeShapeLocked(id model.ShapeID) {
	shape, ok := s.shapes[id]
	if !ok {
		return
	}
	delete(s.shapes, id)
	s.shapesByCanvas[shape.CanvasID] = removeID(s.shapesByCanvas[shape.CanvasID], id)
	if len(s.shapesByCanvas[shape.CanvasID]) == 0 {
		delete(s.shapesByCanvas, shape.CanvasID)
	}
}

// RemoveCanvases deletes canvas records along with their shapes, child
// links and presence-adjacent slices.
func (s *Store) RemoveCanvases(ids []model.CanvasID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		s.removeCanvasLocked(id)
	}
}

func (s *Store) removeCanvasLocked(id model.CanvasID) {
	canvas, ok := s.canvases[id]
	if ok {
		s.canvasesByWhiteboard[canvas.WhiteboardID] = removeID(s.canvasesByWhiteboard[canvas.WhiteboardID], id)
		if canvas.ParentCanvasID != "" {
			s.childCanvasesByCanvas[canvas.ParentCanvasID] = removeID(s.childCanvasesByCanvas[canvas.ParentCanvasID], id)
		}
	}
	delete(s.canvases, id)

	for _, shapeID := range s.shapesByCanvas[id] {
		delete(s.shapes, shapeID)
	}
	delete(s.shapesByCanvas, id)
	delete(s.childCanvasesByCanvas, id)
	delete(s.currentEditorsByCanvas, id)
	delete(s.allowedUsersByCanvas, id)
}

// RemoveWhiteboards deletes whiteboard records and cascades through
// their canvases. Used on whiteboard-leave; entities are never
// implicitly garbage-collected.
func (s *Store) RemoveWhiteboards(ids []model.WhiteboardID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		for _, canvasID := range append([]model.CanvasID(nil), s.canvasesByWhiteboard[id]...) {
			s.removeCanvasLocked(canvasID)
		}
		delete(s.canvasesByWhiteboard, id)
		delete(s.whiteboards, id)
		delete(s.activeUsersByWhiteboard, id)
	}
}

// SetActiveUsers replaces the active-user list for a whiteboard.
func (s *Store) SetActiveUsers(whiteboardID model.WhiteboardID, users []model.UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeUsersByWhiteboard[whiteboardID] = users
}

// SetCurrentEditors merges advisory editor markers by canvas.
func (s *Store) SetCurrentEditors(editors map[model.CanvasID]model.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for canvasID, clientID := range editors {
		if clientID == "" {
			delete(s.currentEditorsByCanvas, canvasID)
		} else {
			s.currentEditorsByCanvas[canvasID] = clientID
		}
	}
}

// RemoveCurrentEditorsByClient clears every editor marker held by the
// given clients.
func (s *Store) RemoveCurrentEditorsByClient(clientIDs []model.ClientID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gone := make(map[model.ClientID]bool, len(clientIDs))
	for _, id := range clientIDs {
		gone[id] = true
	}
	for canvasID, clientID := range s.currentEditorsByCanvas {
		if gone[clientID] {
			delete(s.currentEditorsByCanvas, canvasID)
		}
	}
}

// SetAllowedUsers replaces the allowed-user slice for a canvas.
func (s *Store) SetAllowedUsers(canvasID model.CanvasID, users []model.UserSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowedUsersByCanvas[canvasID] = users
}

func appendUnique[T comparable](ids []T, id T) []T {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID[T comparable](ids []T, id T) []T {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
