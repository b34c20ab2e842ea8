package tool

import (
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// HandTool selects and manipulates committed shapes. Intermediate drag
// frames stay local; exactly one update goes out when the gesture ends.
type HandTool struct {
	engine   Committer
	shapes   ShapeReader
	canvasID model.CanvasID

	state    State
	selected model.ShapeID
	current  model.ShapeModel
	origin   Point
}

func NewHandTool(engine Committer, shapes ShapeReader, canvasID model.CanvasID) *HandTool {
	return &HandTool{engine: engine, shapes: shapes, canvasID: canvasID}
}

func (t *HandTool) State() State { return t.state }

// Selected returns the currently selected shape, if any.
func (t *HandTool) Selected() (model.ShapeID, bool) {
	return t.selected, t.selected != ""
}

// Select picks a single shape. Selecting an unknown id clears the
// selection.
func (t *HandTool) Select(shapeID model.ShapeID) {
	shape, ok := t.shapes.Shape(shapeID)
	if !ok {
		t.Deselect()
		return
	}
	t.selected = shapeID
	t.current = shape.ShapeModel
}

// Deselect clears the selection and aborts any in-flight gesture.
func (t *HandTool) Deselect() {
	t.selected = ""
	t.state = StateIdle
}

// DragStart begins moving the selected shape from p.
func (t *HandTool) DragStart(p Point) {
	if t.selected == "" || t.state != StateIdle {
		return
	}
	shape, ok := t.shapes.Shape(t.selected)
	if !ok {
		t.Deselect()
		return
	}
	t.current = shape.ShapeModel
	t.origin = p
	t.state = StateDrafting
}

// DragMove applies a move frame locally only.
func (t *HandTool) DragMove(p Point) {
	if t.state != StateDrafting {
		return
	}
	moved := t.translated(p)
	t.engine.UpdateShapeLocal(t.canvasID, t.selected, moved)
}

// DragEnd sends the single update for the whole gesture. A drag that
// ended where it began sends nothing.
func (t *HandTool) DragEnd(p Point) error {
	if t.state != StateDrafting {
		return nil
	}
	t.state = StateIdle

	if p == t.origin {
		return nil
	}
	t.current = t.translated(p)
	return t.engine.UpdateShape(t.canvasID, t.selected, t.current)
}

func (t *HandTool) translated(p Point) model.ShapeModel {
	dx := p.X - t.origin.X
	dy := p.Y - t.origin.Y

	moved := t.current
	moved.X += dx
	moved.Y += dy
	if len(moved.Points) >= 4 {
		points := make([]float64, len(moved.Points))
		for i := 0; i < len(moved.Points)-1; i += 2 {
			points[i] = moved.Points[i] + dx
			points[i+1] = moved.Points[i+1] + dy
		}
		moved.Points = points
		moved.X = t.current.X
		moved.Y = t.current.Y
	}
	return moved
}

// TransformEnd bakes an interactive resize/rotate into the record:
// scale folds into the extent fields and the rotation is stored
// absolute, so the transform itself never persists.
func (t *HandTool) TransformEnd(scaleX, scaleY, rotation float64) error {
	if t.selected == "" {
		return nil
	}
	shape, ok := t.shapes.Shape(t.selected)
	if !ok {
		t.Deselect()
		return nil
	}

	m := shape.ShapeModel
	switch m.Type {
	case model.ShapeEllipse:
		m.RadiusX *= scaleX
		m.RadiusY *= scaleY
	case model.ShapeVector:
		points := make([]float64, len(m.Points))
		for i := 0; i < len(m.Points)-1; i += 2 {
			points[i] = m.X + (m.Points[i]-m.X)*scaleX
			points[i+1] = m.Y + (m.Points[i+1]-m.Y)*scaleY
		}
		m.Points = points
	default:
		m.Width *= scaleX
		m.Height *= scaleY
	}
	m.Rotation = rotation

	t.current = m
	return t.engine.UpdateShape(t.canvasID, t.selected, m)
}

// SetAttributes restyles the selected shape with one update. With
// nothing selected it is a no-op.
func (t *HandTool) SetAttributes(attrs Attributes) error {
	if t.selected == "" {
		return nil
	}
	shape, ok := t.shapes.Shape(t.selected)
	if !ok {
		t.Deselect()
		return nil
	}

	m := styled(shape.ShapeModel, attrs)
	if m.Type == model.ShapeText {
		if attrs.Color != "" {
			m.Color = attrs.Color
		}
		if attrs.FontSize > 0 {
			m.FontSize = attrs.FontSize
		}
	}
	t.current = m
	return t.engine.UpdateShape(t.canvasID, t.selected, m)
}
