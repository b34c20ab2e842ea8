package tool

import (
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

const (
	defaultTextContent  = "Text"
	defaultTextFontSize = 20
	defaultTextWidth    = 160
	defaultTextHeight   = 40
)

// TextTool places a text box on pointer-down. The placeholder commits
// immediately so peers see the box appear, then the tool stays in
// editing state and streams content changes as full-record updates.
type TextTool struct {
	engine   Committer
	canvasID model.CanvasID
	attrs    Attributes

	state   State
	shapeID model.ShapeID
	current model.ShapeModel
}

func NewTextTool(engine Committer, canvasID model.CanvasID, attrs Attributes) *TextTool {
	return &TextTool{engine: engine, canvasID: canvasID, attrs: attrs}
}

func (t *TextTool) State() State { return t.state }

// EditingShape returns the id under edit, valid while State is
// StateEditing.
func (t *TextTool) EditingShape() model.ShapeID { return t.shapeID }

// PointerDown commits a placeholder text box and enters editing.
func (t *TextTool) PointerDown(p Point) error {
	if t.state != StateIdle {
		return nil
	}

	fontSize := t.attrs.FontSize
	if fontSize == 0 {
		fontSize = defaultTextFontSize
	}
	t.current = model.ShapeModel{
		Type:     model.ShapeText,
		X:        p.X,
		Y:        p.Y,
		Width:    defaultTextWidth,
		Height:   defaultTextHeight,
		Text:     defaultTextContent,
		FontSize: fontSize,
		Color:    t.attrs.Color,
	}

	ids, err := t.engine.AddShapes(t.canvasID, []model.ShapeModel{t.current})
	if err != nil {
		return err
	}
	t.shapeID = ids[0]
	t.state = StateEditing
	return nil
}

// SetText replaces the content of the box under edit.
func (t *TextTool) SetText(text string) error {
	if t.state != StateEditing {
		return nil
	}
	t.current.Text = text
	return t.engine.UpdateShape(t.canvasID, t.shapeID, t.current)
}

// Confirm ends the editing session, leaving the committed text as-is.
func (t *TextTool) Confirm() {
	if t.state == StateEditing {
		t.state = StateIdle
		t.shapeID = ""
	}
}
