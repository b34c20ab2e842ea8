package client_test

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/client"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/store"
)

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1})
	return slog.New(handler)
}

// fakeMessenger records outbound messages instead of dialing anywhere.
type fakeMessenger struct {
	sent    []protocol.ClientMessage
	sendErr error
}

func (f *fakeMessenger) Send(msg protocol.ClientMessage) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMessenger) Close() error { return nil }

func newTestEngine(t *testing.T) (*client.Engine, *fakeMessenger) {
	t.Helper()
	messenger := &fakeMessenger{}
	engine := client.NewEngine(store.New(), messenger, newTestLogger())
	return engine, messenger
}

// deliver pushes a server message through the engine's frame path.
func deliver(t *testing.T, engine *client.Engine, msg protocol.ServerMessage) {
	t.Helper()
	frame, err := protocol.Encode(msg)
	require.NoError(t, err)
	require.NoError(t, engine.HandleFrame(frame))
}

// initEngine simulates the registration round trip: one canvas, the
// engine bound to client id "me".
func initEngine(t *testing.T, engine *client.Engine) {
	t.Helper()
	deliver(t, engine, &protocol.InitClient{
		ClientID: "me",
		Username: "ann",
		ActiveUsers: []model.UserSummary{
			{ClientID: "me", Username: "ann"},
		},
		Whiteboard: model.WhiteboardView{
			ID:   "wb1",
			Name: "Sprint",
			Canvases: []model.CanvasView{{
				Canvas: model.Canvas{ID: "c1", WhiteboardID: "wb1", Name: "Canvas 1"},
				Shapes: map[model.ShapeID]model.ShapeModel{
					"s1": {Type: model.ShapeRect, Width: 10, Height: 10},
				},
			}},
		},
	})
}

func TestInitRebuildsStoreFromSnapshot(t *testing.T) {
	engine, _ := newTestEngine(t)
	initEngine(t, engine)

	assert.Equal(t, model.ClientID("me"), engine.ClientID())

	view := engine.Store().WhiteboardWithCanvases("wb1")
	require.NotNil(t, view)
	require.Len(t, view.Canvases, 1)
	assert.Contains(t, view.Canvases[0].Shapes, model.ShapeID("s1"))
	assert.Len(t, engine.Store().ActiveUsers("wb1"), 1)
}

func TestReconnectDiscardsPreviousState(t *testing.T) {
	engine, _ := newTestEngine(t)
	initEngine(t, engine)

	tempIDs, err := engine.AddShapes("c1", []model.ShapeModel{{Type: model.ShapeRect, Width: 5, Height: 5}})
	require.NoError(t, err)

	// second init: the snapshot replaces everything, drafts included
	deliver(t, engine, &protocol.InitClient{
		ClientID: "me2",
		Username: "ann",
		Whiteboard: model.WhiteboardView{
			ID:   "wb1",
			Name: "Sprint",
			Canvases: []model.CanvasView{{
				Canvas: model.Canvas{ID: "c1", WhiteboardID: "wb1"},
			}},
		},
	})

	assert.Equal(t, model.ClientID("me2"), engine.ClientID())
	_, ok := engine.Store().Shape(tempIDs[0])
	assert.False(t, ok, "unreconciled draft must not survive a re-init")
}

func TestAddShapesDraftsOptimistically(t *testing.T) {
	engine, messenger := newTestEngine(t)
	initEngine(t, engine)

	tempIDs, err := engine.AddShapes("c1", []model.ShapeModel{
		{Type: model.ShapeRect, X: 1, Width: 10, Height: 10},
		{Type: model.ShapeVector, Points: []float64{0, 0, 5, 5}},
	})
	require.NoError(t, err)
	require.Len(t, tempIDs, 2)

	// drafts are visible immediately, before any server echo
	for _, id := range tempIDs {
		assert.True(t, strings.HasPrefix(string(id), "temp-"))
		_, ok := engine.Store().Shape(id)
		assert.True(t, ok)
	}

	require.Len(t, messenger.sent, 1)
	create, ok := messenger.sent[0].(*protocol.CreateShapes)
	require.True(t, ok)
	assert.Equal(t, model.CanvasID("c1"), create.CanvasID)
	assert.Len(t, create.Shapes, 2)
}

func TestOwnEchoReconcilesTempIDsPositionally(t *testing.T) {
	engine, _ := newTestEngine(t)
	initEngine(t, engine)

	tempIDs, err := engine.AddShapes("c1", []model.ShapeModel{
		{Type: model.ShapeRect, X: 1, Width: 10, Height: 10},
		{Type: model.ShapeEllipse, RadiusX: 3, RadiusY: 3},
	})
	require.NoError(t, err)

	deliver(t, engine, &protocol.ShapesCreated{
		ClientID: "me",
		CanvasID: "c1",
		Shapes: []model.Shape{
			{ID: "srv-1", CanvasID: "c1", WhiteboardID: "wb1", ShapeModel: model.ShapeModel{Type: model.ShapeRect, X: 1, Width: 10, Height: 10}},
			{ID: "srv-2", CanvasID: "c1", WhiteboardID: "wb1", ShapeModel: model.ShapeModel{Type: model.ShapeEllipse, RadiusX: 3, RadiusY: 3}},
		},
	})

	for _, id := range tempIDs {
		_, ok := engine.Store().Shape(id)
		assert.False(t, ok, "temp draft %s should be swapped for its canonical record", id)
	}
	_, ok := engine.Store().Shape("srv-1")
	assert.True(t, ok)
	_, ok = engine.Store().Shape("srv-2")
	assert.True(t, ok)
}

func TestUpdateAfterReconciliationUsesCanonicalID(t *testing.T) {
	engine, messenger := newTestEngine(t)
	initEngine(t, engine)

	tempIDs, err := engine.AddShapes("c1", []model.ShapeModel{{Type: model.ShapeRect, Width: 10, Height: 10}})
	require.NoError(t, err)
	deliver(t, engine, &protocol.ShapesCreated{
		ClientID: "me",
		CanvasID: "c1",
		Shapes: []model.Shape{
			{ID: "srv-1", CanvasID: "c1", WhiteboardID: "wb1", ShapeModel: model.ShapeModel{Type: model.ShapeRect, Width: 10, Height: 10}},
		},
	})

	// callers may still hold the temp id; the alias redirects it
	require.NoError(t, engine.UpdateShape("c1", tempIDs[0], model.ShapeModel{Type: model.ShapeRect, X: 42, Width: 10, Height: 10}))

	update, ok := messenger.sent[len(messenger.sent)-1].(*protocol.UpdateShape)
	require.True(t, ok)
	assert.Equal(t, model.ShapeID("srv-1"), update.ShapeID)

	shape, ok := engine.Store().Shape("srv-1")
	require.True(t, ok)
	assert.Equal(t, 42.0, shape.X)
}

func TestPeerEchoDoesNotTouchPendingBatches(t *testing.T) {
	engine, _ := newTestEngine(t)
	initEngine(t, engine)

	tempIDs, err := engine.AddShapes("c1", []model.ShapeModel{{Type: model.ShapeRect, Width: 10, Height: 10}})
	require.NoError(t, err)

	// a peer's batch on the same canvas arrives first
	deliver(t, engine, &protocol.ShapesCreated{
		ClientID: "peer",
		CanvasID: "c1",
		Shapes: []model.Shape{
			{ID: "peer-1", CanvasID: "c1", WhiteboardID: "wb1", ShapeModel: model.ShapeModel{Type: model.ShapeRect, Width: 2, Height: 2}},
		},
	})

	// our draft stays pending until our own echo lands
	_, ok := engine.Store().Shape(tempIDs[0])
	assert.True(t, ok)
	_, ok = engine.Store().Shape("peer-1")
	assert.True(t, ok)

	deliver(t, engine, &protocol.ShapesCreated{
		ClientID: "me",
		CanvasID: "c1",
		Shapes: []model.Shape{
			{ID: "srv-1", CanvasID: "c1", WhiteboardID: "wb1", ShapeModel: model.ShapeModel{Type: model.ShapeRect, Width: 10, Height: 10}},
		},
	})
	_, ok = engine.Store().Shape(tempIDs[0])
	assert.False(t, ok)
}

func TestUpdateShapeLocalDoesNotSend(t *testing.T) {
	engine, messenger := newTestEngine(t)
	initEngine(t, engine)
	before := len(messenger.sent)

	engine.UpdateShapeLocal("c1", "s1", model.ShapeModel{Type: model.ShapeRect, X: 7, Width: 10, Height: 10})

	assert.Len(t, messenger.sent, before)
	shape, ok := engine.Store().Shape("s1")
	require.True(t, ok)
	assert.Equal(t, 7.0, shape.X)
}

func TestServerBroadcastsNormalizeIntoStore(t *testing.T) {
	engine, _ := newTestEngine(t)
	initEngine(t, engine)

	deliver(t, engine, &protocol.CanvasCreated{
		ClientID: "peer",
		CanvasID: "c2",
		Width:    800,
		Height:   600,
		Name:     "Scratch",
		AllowedUsers: []model.UserSummary{
			{ClientID: "peer", Username: "bob"},
		},
	})
	canvas, ok := engine.Store().Canvas("c2")
	require.True(t, ok)
	assert.Equal(t, model.WhiteboardID("wb1"), canvas.WhiteboardID)
	assert.Len(t, engine.Store().AllowedUsers("c2"), 1)

	deliver(t, engine, &protocol.ShapeUpdated{
		ClientID: "peer",
		CanvasID: "c1",
		ShapeID:  "s1",
		Shape:    model.ShapeModel{Type: model.ShapeRect, X: 99, Width: 10, Height: 10},
	})
	shape, ok := engine.Store().Shape("s1")
	require.True(t, ok)
	assert.Equal(t, 99.0, shape.X)

	deliver(t, engine, &protocol.CanvasEditorsUpdate{
		Editors: map[model.CanvasID]model.ClientID{"c1": "peer"},
	})
	editor, held := engine.Store().CurrentEditor("c1")
	require.True(t, held)
	assert.Equal(t, model.ClientID("peer"), editor)

	deliver(t, engine, &protocol.ClientLogout{ClientID: "peer", Username: "bob"})
	_, held = engine.Store().CurrentEditor("c1")
	assert.False(t, held)

	deliver(t, engine, &protocol.CanvasesDeleted{ClientID: "peer", CanvasIDs: []model.CanvasID{"c2"}})
	_, ok = engine.Store().Canvas("c2")
	assert.False(t, ok)
}

func TestRejectionReachesOnError(t *testing.T) {
	engine, _ := newTestEngine(t)
	initEngine(t, engine)

	var got string
	engine.OnError = func(message string) { got = message }

	deliver(t, engine, &protocol.IndividualError{
		ClientID: "me",
		Message:  "invalid_reference: canvas c9 not found",
	})
	assert.Contains(t, got, "invalid_reference")
}

func TestUnknownServerFrameIsAnError(t *testing.T) {
	engine, _ := newTestEngine(t)
	err := engine.HandleFrame([]byte(`{"type":"time_travel"}`))
	assert.ErrorIs(t, err, protocol.ErrUnknownType)
}
