package tool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/tool"
)

// fakeCommitter records every call the tools make against the engine.
type fakeCommitter struct {
	added     []model.ShapeModel
	updates   []model.ShapeModel
	updateIDs []model.ShapeID
	local     []model.ShapeModel
	nextID    model.ShapeID
}

func (f *fakeCommitter) AddShapes(_ model.CanvasID, models []model.ShapeModel) ([]model.ShapeID, error) {
	f.added = append(f.added, models...)
	ids := make([]model.ShapeID, len(models))
	for i := range ids {
		ids[i] = f.nextID
	}
	return ids, nil
}

func (f *fakeCommitter) UpdateShape(_ model.CanvasID, shapeID model.ShapeID, m model.ShapeModel) error {
	f.updateIDs = append(f.updateIDs, shapeID)
	f.updates = append(f.updates, m)
	return nil
}

func (f *fakeCommitter) UpdateShapeLocal(_ model.CanvasID, _ model.ShapeID, m model.ShapeModel) {
	f.local = append(f.local, m)
}

// fakeShapes is a fixed lookup table standing in for the store.
type fakeShapes map[model.ShapeID]model.Shape

func (f fakeShapes) Shape(id model.ShapeID) (model.Shape, bool) {
	s, ok := f[id]
	return s, ok
}

var testAttrs = tool.Attributes{
	FillColor:   "#ff0000",
	StrokeColor: "#000000",
	StrokeWidth: 2,
}

func TestRectangleDragNormalizesCorners(t *testing.T) {
	engine := &fakeCommitter{}
	rect := tool.NewRectangleTool(engine, "c1", testAttrs)

	// dragging up-left still yields the min corner plus positive extents
	rect.PointerDown(tool.Point{X: 60, Y: 40})
	rect.PointerMove(tool.Point{X: 30, Y: 25})
	require.NoError(t, rect.PointerUp(tool.Point{X: 10, Y: 10}))

	require.Len(t, engine.added, 1)
	m := engine.added[0]
	assert.Equal(t, model.ShapeRect, m.Type)
	assert.Equal(t, 10.0, m.X)
	assert.Equal(t, 10.0, m.Y)
	assert.Equal(t, 50.0, m.Width)
	assert.Equal(t, 30.0, m.Height)
	assert.Equal(t, "#ff0000", m.FillColor)
	assert.Equal(t, tool.StateIdle, rect.State())
}

func TestRectangleClickIsDiscarded(t *testing.T) {
	engine := &fakeCommitter{}
	rect := tool.NewRectangleTool(engine, "c1", testAttrs)

	rect.PointerDown(tool.Point{X: 10, Y: 10})
	require.NoError(t, rect.PointerUp(tool.Point{X: 10, Y: 10}))

	assert.Empty(t, engine.added, "a degenerate draft must not be committed")
	assert.Equal(t, tool.StateIdle, rect.State())
}

func TestRectangleDraftPreview(t *testing.T) {
	engine := &fakeCommitter{}
	rect := tool.NewRectangleTool(engine, "c1", testAttrs)

	_, ok := rect.Draft()
	assert.False(t, ok)

	rect.PointerDown(tool.Point{X: 0, Y: 0})
	rect.PointerMove(tool.Point{X: 20, Y: 10})
	draft, ok := rect.Draft()
	require.True(t, ok)
	assert.Equal(t, 20.0, draft.Width)
	assert.Empty(t, engine.added, "previewing must not commit")
}

func TestEllipseStoresCenterAndRadii(t *testing.T) {
	engine := &fakeCommitter{}
	ellipse := tool.NewEllipseTool(engine, "c1", testAttrs)

	ellipse.PointerDown(tool.Point{X: 10, Y: 10})
	require.NoError(t, ellipse.PointerUp(tool.Point{X: 50, Y: 30}))

	require.Len(t, engine.added, 1)
	m := engine.added[0]
	assert.Equal(t, model.ShapeEllipse, m.Type)
	assert.Equal(t, 30.0, m.X)
	assert.Equal(t, 20.0, m.Y)
	assert.Equal(t, 20.0, m.RadiusX)
	assert.Equal(t, 10.0, m.RadiusY)
}

func TestEllipseCollapsedAxisIsDiscarded(t *testing.T) {
	engine := &fakeCommitter{}
	ellipse := tool.NewEllipseTool(engine, "c1", testAttrs)

	ellipse.PointerDown(tool.Point{X: 10, Y: 10})
	require.NoError(t, ellipse.PointerUp(tool.Point{X: 50, Y: 10}))
	assert.Empty(t, engine.added)
}

func TestVectorKeepsEndpoints(t *testing.T) {
	engine := &fakeCommitter{}
	vector := tool.NewVectorTool(engine, "c1", testAttrs)

	vector.PointerDown(tool.Point{X: 5, Y: 5})
	require.NoError(t, vector.PointerUp(tool.Point{X: 25, Y: 45}))

	require.Len(t, engine.added, 1)
	m := engine.added[0]
	assert.Equal(t, model.ShapeVector, m.Type)
	assert.Equal(t, []float64{5, 5, 25, 45}, m.Points)
}

func TestVectorZeroLengthIsDiscarded(t *testing.T) {
	engine := &fakeCommitter{}
	vector := tool.NewVectorTool(engine, "c1", testAttrs)

	vector.PointerDown(tool.Point{X: 5, Y: 5})
	require.NoError(t, vector.PointerUp(tool.Point{X: 5, Y: 5}))
	assert.Empty(t, engine.added)
}

func TestHandDragSendsExactlyOneUpdate(t *testing.T) {
	engine := &fakeCommitter{}
	shapes := fakeShapes{
		"s1": {ID: "s1", CanvasID: "c1", ShapeModel: model.ShapeModel{Type: model.ShapeRect, X: 10, Y: 10, Width: 40, Height: 20}},
	}
	hand := tool.NewHandTool(engine, shapes, "c1")

	hand.Select("s1")
	hand.DragStart(tool.Point{X: 15, Y: 15})
	hand.DragMove(tool.Point{X: 20, Y: 15})
	hand.DragMove(tool.Point{X: 30, Y: 25})
	hand.DragMove(tool.Point{X: 45, Y: 35})
	require.NoError(t, hand.DragEnd(tool.Point{X: 45, Y: 35}))

	// intermediate frames stayed local
	assert.Len(t, engine.local, 3)
	require.Len(t, engine.updates, 1)
	final := engine.updates[0]
	assert.Equal(t, 40.0, final.X)
	assert.Equal(t, 30.0, final.Y)
	assert.Equal(t, model.ShapeID("s1"), engine.updateIDs[0])
}

func TestHandDragBackToOriginSendsNothing(t *testing.T) {
	engine := &fakeCommitter{}
	shapes := fakeShapes{
		"s1": {ID: "s1", CanvasID: "c1", ShapeModel: model.ShapeModel{Type: model.ShapeRect, X: 10, Y: 10, Width: 40, Height: 20}},
	}
	hand := tool.NewHandTool(engine, shapes, "c1")

	hand.Select("s1")
	hand.DragStart(tool.Point{X: 15, Y: 15})
	hand.DragMove(tool.Point{X: 40, Y: 40})
	require.NoError(t, hand.DragEnd(tool.Point{X: 15, Y: 15}))

	assert.NotEmpty(t, engine.local)
	assert.Empty(t, engine.updates, "a cancelled move must not go out")
}

func TestHandDragMovesVectorPoints(t *testing.T) {
	engine := &fakeCommitter{}
	shapes := fakeShapes{
		"v1": {ID: "v1", CanvasID: "c1", ShapeModel: model.ShapeModel{Type: model.ShapeVector, Points: []float64{0, 0, 10, 10}}},
	}
	hand := tool.NewHandTool(engine, shapes, "c1")

	hand.Select("v1")
	hand.DragStart(tool.Point{X: 0, Y: 0})
	require.NoError(t, hand.DragEnd(tool.Point{X: 5, Y: 7}))

	require.Len(t, engine.updates, 1)
	assert.Equal(t, []float64{5, 7, 15, 17}, engine.updates[0].Points)
}

func TestHandSelectUnknownClearsSelection(t *testing.T) {
	engine := &fakeCommitter{}
	hand := tool.NewHandTool(engine, fakeShapes{}, "c1")

	hand.Select("ghost")
	_, selected := hand.Selected()
	assert.False(t, selected)

	// gestures without a selection are ignored
	hand.DragStart(tool.Point{X: 0, Y: 0})
	require.NoError(t, hand.DragEnd(tool.Point{X: 10, Y: 10}))
	assert.Empty(t, engine.updates)
	assert.Empty(t, engine.local)
}

func TestTransformEndBakesScaleIntoExtents(t *testing.T) {
	engine := &fakeCommitter{}
	shapes := fakeShapes{
		"r1": {ID: "r1", CanvasID: "c1", ShapeModel: model.ShapeModel{Type: model.ShapeRect, X: 10, Y: 10, Width: 40, Height: 20}},
		"e1": {ID: "e1", CanvasID: "c1", ShapeModel: model.ShapeModel{Type: model.ShapeEllipse, X: 50, Y: 50, RadiusX: 10, RadiusY: 5}},
	}
	hand := tool.NewHandTool(engine, shapes, "c1")

	hand.Select("r1")
	require.NoError(t, hand.TransformEnd(2, 0.5, 45))
	require.Len(t, engine.updates, 1)
	assert.Equal(t, 80.0, engine.updates[0].Width)
	assert.Equal(t, 10.0, engine.updates[0].Height)
	assert.Equal(t, 45.0, engine.updates[0].Rotation)

	hand.Select("e1")
	require.NoError(t, hand.TransformEnd(3, 2, 0))
	require.Len(t, engine.updates, 2)
	assert.Equal(t, 30.0, engine.updates[1].RadiusX)
	assert.Equal(t, 10.0, engine.updates[1].RadiusY)
}

func TestTransformEndScalesVectorAboutAnchor(t *testing.T) {
	engine := &fakeCommitter{}
	shapes := fakeShapes{
		"v1": {ID: "v1", CanvasID: "c1", ShapeModel: model.ShapeModel{Type: model.ShapeVector, Points: []float64{0, 0, 10, 10}}},
	}
	hand := tool.NewHandTool(engine, shapes, "c1")

	hand.Select("v1")
	require.NoError(t, hand.TransformEnd(2, 2, 0))
	require.Len(t, engine.updates, 1)
	assert.Equal(t, []float64{0, 0, 20, 20}, engine.updates[0].Points)
}

func TestSetAttributesWithoutSelectionIsNoop(t *testing.T) {
	engine := &fakeCommitter{}
	hand := tool.NewHandTool(engine, fakeShapes{}, "c1")

	require.NoError(t, hand.SetAttributes(testAttrs))
	assert.Empty(t, engine.updates)
}

func TestSetAttributesRestylesSelection(t *testing.T) {
	engine := &fakeCommitter{}
	shapes := fakeShapes{
		"t1": {ID: "t1", CanvasID: "c1", ShapeModel: model.ShapeModel{Type: model.ShapeText, Text: "hello", FontSize: 20}},
	}
	hand := tool.NewHandTool(engine, shapes, "c1")

	hand.Select("t1")
	require.NoError(t, hand.SetAttributes(tool.Attributes{
		FillColor: "#ffffff",
		Color:     "#222222",
		FontSize:  32,
	}))

	require.Len(t, engine.updates, 1)
	m := engine.updates[0]
	assert.Equal(t, "hello", m.Text, "restyling must not touch the content")
	assert.Equal(t, "#222222", m.Color)
	assert.Equal(t, 32.0, m.FontSize)
}

func TestTextToolCommitsPlaceholderThenStreamsEdits(t *testing.T) {
	engine := &fakeCommitter{nextID: "srv-1"}
	text := tool.NewTextTool(engine, "c1", tool.Attributes{Color: "#111111"})

	require.NoError(t, text.PointerDown(tool.Point{X: 30, Y: 40}))
	assert.Equal(t, tool.StateEditing, text.State())
	assert.Equal(t, model.ShapeID("srv-1"), text.EditingShape())

	// peers see the placeholder immediately
	require.Len(t, engine.added, 1)
	placeholder := engine.added[0]
	assert.Equal(t, model.ShapeText, placeholder.Type)
	assert.Equal(t, "Text", placeholder.Text)
	assert.Equal(t, 20.0, placeholder.FontSize)
	assert.Equal(t, 30.0, placeholder.X)

	require.NoError(t, text.SetText("hello"))
	require.NoError(t, text.SetText("hello world"))
	require.Len(t, engine.updates, 2)
	assert.Equal(t, "hello world", engine.updates[1].Text)

	text.Confirm()
	assert.Equal(t, tool.StateIdle, text.State())
	require.NoError(t, text.SetText("ignored"))
	assert.Len(t, engine.updates, 2, "edits after confirm are dropped")
}
