// Package presence tracks which clients are connected to which
// whiteboards, plus the advisory per-canvas current-editor marker.
// Presence is ephemeral: it exists only for the duration of a transport
// session and is rebuilt from a register message on (re)connect. A
// reconnect is indistinguishable from a fresh registration.
package presence

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

type clientEntry struct {
	username    model.Username
	color       string
	whiteboards map[model.WhiteboardID]struct{}
}

// Tracker is shared across all transport sessions; every method is safe
// for concurrent use. Cross-whiteboard operations are independent.
type Tracker struct {
	mu          sync.RWMutex
	clients     map[model.ClientID]*clientEntry
	byBoard     map[model.WhiteboardID]map[model.ClientID]struct{}
	editors     map[model.CanvasID]model.ClientID
	canvasBoard map[model.CanvasID]model.WhiteboardID
	colors      *ColorGenerator
	logger      *slog.Logger
}

func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		clients:     make(map[model.ClientID]*clientEntry),
		byBoard:     make(map[model.WhiteboardID]map[model.ClientID]struct{}),
		editors:     make(map[model.CanvasID]model.ClientID),
		canvasBoard: make(map[model.CanvasID]model.WhiteboardID),
		colors:      NewColorGenerator(),
		logger:      logger.With(slog.String("component", "presence")),
	}
}

// RegisterClient adds the client to the whiteboard's active set and
// returns the updated set for broadcast.
func (t *Tracker) RegisterClient(clientID model.ClientID, username model.Username, whiteboardID model.WhiteboardID) []model.UserSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.clients[clientID]
	if !ok {
		entry = &clientEntry{
			username:    username,
			color:       t.colors.NextColor(),
			whiteboards: make(map[model.WhiteboardID]struct{}),
		}
		t.clients[clientID] = entry
	}
	entry.username = username
	entry.whiteboards[whiteboardID] = struct{}{}

	if t.byBoard[whiteboardID] == nil {
		t.byBoard[whiteboardID] = make(map[model.ClientID]struct{})
	}
	t.byBoard[whiteboardID][clientID] = struct{}{}

	t.logger.Debug("client registered",
		slog.String("clientId", clientID),
		slog.String("username", username),
		slog.String("whiteboardId", whiteboardID))

	return t.activeUsersLocked(whiteboardID)
}

// Departure describes the presence changes caused by a client leaving,
// for broadcast to the remaining sessions of each affected whiteboard.
type Departure struct {
	Username        model.Username
	Whiteboards     []model.WhiteboardID
	ReleasedCanvas  []model.CanvasID
	ActiveByBoard   map[model.WhiteboardID][]model.UserSummary
	ReleasedByBoard map[model.WhiteboardID][]model.CanvasID
}

// UnregisterClient removes the client from every whiteboard set it
// belonged to and releases any editor markers it held. Driven by the
// transport close hook, so cleanup happens even on abrupt disconnect.
func (t *Tracker) UnregisterClient(clientID model.ClientID) Departure {
	t.mu.Lock()
	defer t.mu.Unlock()

	dep := Departure{
		ActiveByBoard:   make(map[model.WhiteboardID][]model.UserSummary),
		ReleasedByBoard: make(map[model.WhiteboardID][]model.CanvasID),
	}

	entry, ok := t.clients[clientID]
	if !ok {
		return dep
	}
	dep.Username = entry.username

	for whiteboardID := range entry.whiteboards {
		if members := t.byBoard[whiteboardID]; members != nil {
			delete(members, clientID)
			if len(members) == 0 {
				delete(t.byBoard, whiteboardID)
			}
		}
		dep.Whiteboards = append(dep.Whiteboards, whiteboardID)
		dep.ActiveByBoard[whiteboardID] = t.activeUsersLocked(whiteboardID)
	}

	for canvasID, editor := range t.editors {
		if editor != clientID {
			continue
		}
		delete(t.editors, canvasID)
		dep.ReleasedCanvas = append(dep.ReleasedCanvas, canvasID)
		if whiteboardID, ok := t.canvasBoard[canvasID]; ok {
			dep.ReleasedByBoard[whiteboardID] = append(dep.ReleasedByBoard[whiteboardID], canvasID)
		}
		delete(t.canvasBoard, canvasID)
	}

	delete(t.clients, clientID)

	t.logger.Debug("client unregistered", slog.String("clientId", clientID))
	return dep
}

// SetCurrentEditor marks clientID as the advisory editor of a canvas.
// Last writer wins; this is not a lock, and two clients may briefly both
// believe they hold it.
func (t *Tracker) SetCurrentEditor(whiteboardID model.WhiteboardID, canvasID model.CanvasID, clientID model.ClientID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.editors[canvasID] = clientID
	t.canvasBoard[canvasID] = whiteboardID
}

// ClearCurrentEditor clears the advisory marker for a canvas.
func (t *Tracker) ClearCurrentEditor(canvasID model.CanvasID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.editors, canvasID)
	delete(t.canvasBoard, canvasID)
}

// CurrentEditor returns the advisory marker for a canvas, if set.
func (t *Tracker) CurrentEditor(canvasID model.CanvasID) (model.ClientID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	clientID, ok := t.editors[canvasID]
	return clientID, ok
}

// EditorsByWhiteboard snapshots the editor markers for every canvas of a
// whiteboard.
func (t *Tracker) EditorsByWhiteboard(whiteboardID model.WhiteboardID) map[model.CanvasID]model.ClientID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	editors := make(map[model.CanvasID]model.ClientID)
	for canvasID, clientID := range t.editors {
		if t.canvasBoard[canvasID] == whiteboardID {
			editors[canvasID] = clientID
		}
	}
	return editors
}

// ActiveUsers returns the current active set of a whiteboard, one entry
// per username, ordered for deterministic broadcasts.
func (t *Tracker) ActiveUsers(whiteboardID model.WhiteboardID) []model.UserSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeUsersLocked(whiteboardID)
}

func (t *Tracker) activeUsersLocked(whiteboardID model.WhiteboardID) []model.UserSummary {
	seen := make(map[model.Username]bool)
	users := make([]model.UserSummary, 0, len(t.byBoard[whiteboardID]))
	for clientID := range t.byBoard[whiteboardID] {
		entry := t.clients[clientID]
		if entry == nil || seen[entry.username] {
			continue
		}
		seen[entry.username] = true
		users = append(users, model.UserSummary{ClientID: clientID, Username: entry.username})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// Color returns the presence color assigned to a client.
func (t *Tracker) Color(clientID model.ClientID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if entry, ok := t.clients[clientID]; ok {
		return entry.color
	}
	return ""
}
