// Package tool implements the pointer-driven drawing tools. Each tool
// is a small state machine over pointer events; a draft exists only
// inside the tool until pointer-up commits it through the engine, and a
// draft that collapses to zero extent is discarded with no message.
package tool

import (
	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// Point is a position in canvas coordinates.
type Point struct {
	X float64
	Y float64
}

// Attributes are the style values applied to newly drawn shapes.
type Attributes struct {
	FillColor   string
	StrokeColor string
	StrokeWidth float64
	Color       string
	FontSize    float64
}

// State of a tool's interaction machine.
type State int

const (
	StateIdle State = iota
	StateDrafting
	StateEditing
)

// Committer is the engine surface the drawing tools need.
type Committer interface {
	AddShapes(canvasID model.CanvasID, models []model.ShapeModel) ([]model.ShapeID, error)
	UpdateShape(canvasID model.CanvasID, shapeID model.ShapeID, m model.ShapeModel) error
	UpdateShapeLocal(canvasID model.CanvasID, shapeID model.ShapeID, m model.ShapeModel)
}

// ShapeReader looks up committed shape records for selection tools.
type ShapeReader interface {
	Shape(id model.ShapeID) (model.Shape, bool)
}

func styled(m model.ShapeModel, attrs Attributes) model.ShapeModel {
	m.FillColor = attrs.FillColor
	m.StrokeColor = attrs.StrokeColor
	m.StrokeWidth = attrs.StrokeWidth
	return m
}
