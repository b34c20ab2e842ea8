package model

// Shape types drawable on a canvas.
const (
	ShapeRect    = "rect"
	ShapeEllipse = "ellipse"
	ShapeVector  = "vector"
	ShapeText    = "text"
)

// ShapeModel is the tagged union of drawable primitives, flattened into
// a single record the way it travels on the wire. Which geometry fields
// are meaningful depends on Type; the protocol validator checks each
// type against its own schema. For ellipses X,Y is the center.
type ShapeModel struct {
	Type string `json:"type"`

	// -- geometry
	X       float64   `json:"x,omitempty"`
	Y       float64   `json:"y,omitempty"`
	Width   float64   `json:"width,omitempty"`
	Height  float64   `json:"height,omitempty"`
	RadiusX float64   `json:"radiusX,omitempty"`
	RadiusY float64   `json:"radiusY,omitempty"`
	Points  []float64 `json:"points,omitempty"`

	// -- style
	FillColor   string  `json:"fillColor,omitempty"`
	StrokeColor string  `json:"strokeColor,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Rotation    float64 `json:"rotation,omitempty"`

	// -- text only
	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`
}

// ZeroExtent reports whether the shape has no drawable area: a rect or
// ellipse with a collapsed axis, or a vector whose endpoints coincide.
// Text placeholders always have extent.
func (m ShapeModel) ZeroExtent() bool {
	switch m.Type {
	case ShapeRect:
		return m.Width == 0 || m.Height == 0
	case ShapeEllipse:
		return m.RadiusX == 0 || m.RadiusY == 0
	case ShapeVector:
		if len(m.Points) < 4 {
			return true
		}
		return m.Points[0] == m.Points[2] && m.Points[1] == m.Points[3]
	}
	return false
}

// Shape is a ShapeModel bound to its identifiers. WhiteboardID is
// denormalized onto the record for fast filtering. Updates replace the
// whole record keyed by ID; there is no field-level merge.
type Shape struct {
	ID           ShapeID      `json:"id"`
	CanvasID     CanvasID     `json:"canvasId"`
	WhiteboardID WhiteboardID `json:"whiteboardId"`
	ShapeModel
}
