package tool

import (
	"math"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// RectangleTool drags out an axis-aligned rectangle between the anchor
// and the release point.
type RectangleTool struct {
	engine   Committer
	canvasID model.CanvasID
	attrs    Attributes

	state  State
	anchor Point
	cursor Point
}

func NewRectangleTool(engine Committer, canvasID model.CanvasID, attrs Attributes) *RectangleTool {
	return &RectangleTool{engine: engine, canvasID: canvasID, attrs: attrs}
}

func (t *RectangleTool) State() State { return t.state }

func (t *RectangleTool) PointerDown(p Point) {
	if t.state != StateIdle {
		return
	}
	t.state = StateDrafting
	t.anchor = p
	t.cursor = p
}

func (t *RectangleTool) PointerMove(p Point) {
	if t.state == StateDrafting {
		t.cursor = p
	}
}

// Draft returns the in-progress geometry for preview rendering.
func (t *RectangleTool) Draft() (model.ShapeModel, bool) {
	if t.state != StateDrafting {
		return model.ShapeModel{}, false
	}
	return t.model(), true
}

// PointerUp commits the draft, or discards it when the drag collapsed
// to a degenerate rectangle.
func (t *RectangleTool) PointerUp(p Point) error {
	if t.state != StateDrafting {
		return nil
	}
	t.cursor = p
	t.state = StateIdle

	m := t.model()
	if m.ZeroExtent() {
		return nil
	}
	_, err := t.engine.AddShapes(t.canvasID, []model.ShapeModel{m})
	return err
}

func (t *RectangleTool) model() model.ShapeModel {
	return styled(model.ShapeModel{
		Type:   model.ShapeRect,
		X:      math.Min(t.anchor.X, t.cursor.X),
		Y:      math.Min(t.anchor.Y, t.cursor.Y),
		Width:  math.Abs(t.cursor.X - t.anchor.X),
		Height: math.Abs(t.cursor.Y - t.anchor.Y),
	}, t.attrs)
}

// EllipseTool drags out an ellipse inscribed in the anchor-to-cursor
// bounding box; the stored geometry is center plus radii.
type EllipseTool struct {
	engine   Committer
	canvasID model.CanvasID
	attrs    Attributes

	state  State
	anchor Point
	cursor Point
}

func NewEllipseTool(engine Committer, canvasID model.CanvasID, attrs Attributes) *EllipseTool {
	return &EllipseTool{engine: engine, canvasID: canvasID, attrs: attrs}
}

func (t *EllipseTool) State() State { return t.state }

func (t *EllipseTool) PointerDown(p Point) {
	if t.state != StateIdle {
		return
	}
	t.state = StateDrafting
	t.anchor = p
	t.cursor = p
}

func (t *EllipseTool) PointerMove(p Point) {
	if t.state == StateDrafting {
		t.cursor = p
	}
}

func (t *EllipseTool) Draft() (model.ShapeModel, bool) {
	if t.state != StateDrafting {
		return model.ShapeModel{}, false
	}
	return t.model(), true
}

func (t *EllipseTool) PointerUp(p Point) error {
	if t.state != StateDrafting {
		return nil
	}
	t.cursor = p
	t.state = StateIdle

	m := t.model()
	if m.ZeroExtent() {
		return nil
	}
	_, err := t.engine.AddShapes(t.canvasID, []model.ShapeModel{m})
	return err
}

func (t *EllipseTool) model() model.ShapeModel {
	return styled(model.ShapeModel{
		Type:    model.ShapeEllipse,
		X:       (t.anchor.X + t.cursor.X) / 2,
		Y:       (t.anchor.Y + t.cursor.Y) / 2,
		RadiusX: math.Abs(t.cursor.X-t.anchor.X) / 2,
		RadiusY: math.Abs(t.cursor.Y-t.anchor.Y) / 2,
	}, t.attrs)
}

// VectorTool draws a straight segment between press and release.
type VectorTool struct {
	engine   Committer
	canvasID model.CanvasID
	attrs    Attributes

	state  State
	anchor Point
	cursor Point
}

func NewVectorTool(engine Committer, canvasID model.CanvasID, attrs Attributes) *VectorTool {
	return &VectorTool{engine: engine, canvasID: canvasID, attrs: attrs}
}

func (t *VectorTool) State() State { return t.state }

func (t *VectorTool) PointerDown(p Point) {
	if t.state != StateIdle {
		return
	}
	t.state = StateDrafting
	t.anchor = p
	t.cursor = p
}

func (t *VectorTool) PointerMove(p Point) {
	if t.state == StateDrafting {
		t.cursor = p
	}
}

func (t *VectorTool) Draft() (model.ShapeModel, bool) {
	if t.state != StateDrafting {
		return model.ShapeModel{}, false
	}
	return t.model(), true
}

func (t *VectorTool) PointerUp(p Point) error {
	if t.state != StateDrafting {
		return nil
	}
	t.cursor = p
	t.state = StateIdle

	m := t.model()
	if m.ZeroExtent() {
		return nil
	}
	_, err := t.engine.AddShapes(t.canvasID, []model.ShapeModel{m})
	return err
}

func (t *VectorTool) model() model.ShapeModel {
	return styled(model.ShapeModel{
		Type:   model.ShapeVector,
		Points: []float64{t.anchor.X, t.anchor.Y, t.cursor.X, t.cursor.Y},
	}, t.attrs)
}
