package client

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/store"
)

// Engine keeps the local entity store in sync with the server. Local
// edits are applied to the store immediately under temporary ids and
// sent out; server echoes and peer broadcasts are normalized back into
// the store, reconciling temp ids against server-assigned ones.
type Engine struct {
	mu        sync.Mutex
	store     *store.Store
	messenger Messenger
	logger    *slog.Logger

	clientID     model.ClientID
	username     model.Username
	whiteboardID model.WhiteboardID

	// pendingByCanvas holds, per canvas, the temp-id batches of sent
	// create_shapes operations in send order. The server echoes batches
	// in the same order, so reconciliation is positional FIFO.
	pendingByCanvas map[model.CanvasID][][]model.ShapeID
	// aliases maps a reconciled temp id to its canonical server id so
	// later edits addressed by temp id still land.
	aliases map[model.ShapeID]model.ShapeID

	// OnError, when set, receives server rejections of this client's
	// operations.
	OnError func(message string)
}

func NewEngine(st *store.Store, messenger Messenger, logger *slog.Logger) *Engine {
	return &Engine{
		store:           st,
		messenger:       messenger,
		logger:          logger.With("component", "engine"),
		pendingByCanvas: make(map[model.CanvasID][][]model.ShapeID),
		aliases:         make(map[model.ShapeID]model.ShapeID),
	}
}

// Store exposes the engine's entity store for selectors.
func (e *Engine) Store() *store.Store { return e.store }

// ClientID returns the server-assigned id, empty before init_client.
func (e *Engine) ClientID() model.ClientID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clientID
}

// Register starts a session under the given username. The server
// answers with the full whiteboard snapshot.
func (e *Engine) Register(username model.Username) error {
	return e.messenger.Send(&protocol.Register{Username: username})
}

// SetEditingCanvas advertises which canvas this client is editing.
// An empty id clears the marker.
func (e *Engine) SetEditingCanvas(canvasID model.CanvasID) error {
	return e.messenger.Send(&protocol.EditingCanvas{CanvasID: canvasID})
}

// CreateCanvas requests a new canvas. The canvas appears in the store
// once the server echoes it back with its canonical id.
func (e *Engine) CreateCanvas(msg protocol.CreateCanvas) error {
	return e.messenger.Send(&msg)
}

// DeleteCanvases requests removal of canvases. Removal is applied on
// the server's broadcast; locally the records are dropped immediately.
func (e *Engine) DeleteCanvases(canvasIDs []model.CanvasID) error {
	e.store.RemoveCanvases(canvasIDs)
	return e.messenger.Send(&protocol.DeleteCanvases{CanvasIDs: canvasIDs})
}

// UpdateAllowedUsers requests a new allowed-user set for a canvas.
func (e *Engine) UpdateAllowedUsers(canvasID model.CanvasID, users []model.UserSummary) error {
	e.store.SetAllowedUsers(canvasID, users)
	return e.messenger.Send(&protocol.UpdateAllowedUsers{CanvasID: canvasID, AllowedUsers: users})
}

// AddShapes commits drafted shapes: they enter the store at once under
// temp ids, and a create_shapes goes to the server. The returned ids
// are the temp ids, usable with UpdateShape until reconciliation.
func (e *Engine) AddShapes(canvasID model.CanvasID, models []model.ShapeModel) ([]model.ShapeID, error) {
	if len(models) == 0 {
		return nil, nil
	}

	e.mu.Lock()
	tempIDs := make([]model.ShapeID, 0, len(models))
	drafts := make(map[model.ShapeID]model.Shape, len(models))
	for _, m := range models {
		id := model.ShapeID("temp-" + uuid.NewString())
		tempIDs = append(tempIDs, id)
		drafts[id] = model.Shape{
			ID:           id,
			CanvasID:     canvasID,
			WhiteboardID: e.whiteboardID,
			ShapeModel:   m,
		}
	}
	e.pendingByCanvas[canvasID] = append(e.pendingByCanvas[canvasID], tempIDs)
	e.mu.Unlock()

	e.store.AddShapes(drafts)

	if err := e.messenger.Send(&protocol.CreateShapes{CanvasID: canvasID, Shapes: models}); err != nil {
		return tempIDs, err
	}
	return tempIDs, nil
}

// UpdateShape applies a full replacement locally and sends it out.
// Temp ids are translated if the shape has already been reconciled.
func (e *Engine) UpdateShape(canvasID model.CanvasID, shapeID model.ShapeID, m model.ShapeModel) error {
	shapeID = e.resolve(shapeID)
	e.applyShape(canvasID, shapeID, m)
	return e.messenger.Send(&protocol.UpdateShape{CanvasID: canvasID, ShapeID: shapeID, Shape: m})
}

// UpdateShapeLocal applies a replacement to the store without sending.
// Used for intermediate drag frames; the final state goes through
// UpdateShape.
func (e *Engine) UpdateShapeLocal(canvasID model.CanvasID, shapeID model.ShapeID, m model.ShapeModel) {
	e.applyShape(canvasID, e.resolve(shapeID), m)
}

func (e *Engine) applyShape(canvasID model.CanvasID, shapeID model.ShapeID, m model.ShapeModel) {
	e.store.SetShapes(map[model.ShapeID]model.Shape{
		shapeID: {
			ID:           shapeID,
			CanvasID:     canvasID,
			WhiteboardID: e.whiteboardID,
			ShapeModel:   m,
		},
	})
}

func (e *Engine) resolve(shapeID model.ShapeID) model.ShapeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if canonical, ok := e.aliases[shapeID]; ok {
		return canonical
	}
	return shapeID
}

// HandleFrame normalizes one server frame into the store.
func (e *Engine) HandleFrame(frame []byte) error {
	msg, err := protocol.DecodeServer(frame)
	if err != nil {
		return fmt.Errorf("decode server frame: %w", err)
	}

	switch m := msg.(type) {
	case *protocol.InitClient:
		e.handleInit(m)
	case *protocol.ActiveUsersUpdate:
		e.store.SetActiveUsers(e.boardID(), m.ActiveUsers)
	case *protocol.ClientLogin:
		// roster change arrives via active_users_update
	case *protocol.ClientLogout:
		e.store.RemoveCurrentEditorsByClient([]model.ClientID{m.ClientID})
	case *protocol.CanvasEditorsUpdate:
		e.store.SetCurrentEditors(m.Editors)
	case *protocol.CanvasCreated:
		e.handleCanvasCreated(m)
	case *protocol.ShapesCreated:
		e.handleShapesCreated(m)
	case *protocol.ShapeUpdated:
		e.applyShape(m.CanvasID, m.ShapeID, m.Shape)
	case *protocol.CanvasesDeleted:
		e.store.RemoveCanvases(m.CanvasIDs)
	case *protocol.AllowedUsersUpdated:
		e.store.SetAllowedUsers(m.CanvasID, m.AllowedUsers)
	case *protocol.IndividualError:
		e.logger.Warn("operation rejected by server", "message", m.Message)
		if e.OnError != nil {
			e.OnError(m.Message)
		}
	case *protocol.BroadcastError:
		e.logger.Error("whiteboard error", "message", m.Message)
		if e.OnError != nil {
			e.OnError(m.Message)
		}
	default:
		return fmt.Errorf("%w: unhandled server message %T", protocol.ErrProtocol, msg)
	}
	return nil
}

// handleInit rebuilds the store from the snapshot. Any state from a
// previous connection, including unreconciled drafts, is discarded.
func (e *Engine) handleInit(m *protocol.InitClient) {
	e.mu.Lock()
	e.clientID = m.ClientID
	e.username = m.Username
	e.whiteboardID = m.Whiteboard.ID
	e.pendingByCanvas = make(map[model.CanvasID][][]model.ShapeID)
	e.aliases = make(map[model.ShapeID]model.ShapeID)
	e.mu.Unlock()

	e.store.Reset()
	e.store.SetWhiteboards(map[model.WhiteboardID]model.Whiteboard{
		m.Whiteboard.ID: {ID: m.Whiteboard.ID, Name: m.Whiteboard.Name},
	})

	canvases := make(map[model.CanvasID]model.Canvas, len(m.Whiteboard.Canvases))
	shapes := make(map[model.ShapeID]model.Shape)
	for _, cv := range m.Whiteboard.Canvases {
		canvases[cv.ID] = cv.Canvas
		for id, sm := range cv.Shapes {
			shapes[id] = model.Shape{
				ID:           id,
				CanvasID:     cv.ID,
				WhiteboardID: m.Whiteboard.ID,
				ShapeModel:   sm,
			}
		}
	}
	e.store.SetCanvases(canvases)
	e.store.SetShapes(shapes)
	e.store.SetActiveUsers(m.Whiteboard.ID, m.ActiveUsers)

	e.logger.Info("initialized from snapshot",
		"client_id", m.ClientID,
		"whiteboard_id", m.Whiteboard.ID,
		"canvases", len(canvases),
	)
}

func (e *Engine) handleCanvasCreated(m *protocol.CanvasCreated) {
	e.store.SetCanvases(map[model.CanvasID]model.Canvas{
		m.CanvasID: {
			ID:             m.CanvasID,
			WhiteboardID:   e.boardID(),
			ParentCanvasID: m.ParentCanvasID,
			Name:           m.Name,
			Width:          m.Width,
			Height:         m.Height,
			AllowedUsers:   m.AllowedUsers,
		},
	})
	e.store.SetAllowedUsers(m.CanvasID, m.AllowedUsers)
}

// handleShapesCreated applies a create_shapes broadcast. For this
// client's own echo the temp drafts of the oldest pending batch on that
// canvas are swapped for the canonical records, position by position.
func (e *Engine) handleShapesCreated(m *protocol.ShapesCreated) {
	records := make(map[model.ShapeID]model.Shape, len(m.Shapes))
	for _, shape := range m.Shapes {
		records[shape.ID] = shape
	}

	if m.ClientID == e.ClientID() {
		e.mu.Lock()
		var tempIDs []model.ShapeID
		if batches := e.pendingByCanvas[m.CanvasID]; len(batches) > 0 {
			tempIDs = batches[0]
			e.pendingByCanvas[m.CanvasID] = batches[1:]
		}
		for i, tempID := range tempIDs {
			if i < len(m.Shapes) {
				e.aliases[tempID] = m.Shapes[i].ID
			}
		}
		e.mu.Unlock()

		if len(tempIDs) > 0 {
			e.store.RemoveShapes(tempIDs)
		}
	}

	e.store.AddShapes(records)
}

func (e *Engine) boardID() model.WhiteboardID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.whiteboardID
}
