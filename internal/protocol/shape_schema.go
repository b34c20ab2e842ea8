package protocol

// Validation limit constants for shape geometry and style.
const (
	MaxCoordinate   = 1000000
	MinCoordinate   = -1000000
	MaxPointsInPath = 10000
	MaxStrokeWidth  = 1000
	MaxFontSize     = 500
	MaxTextLength   = 1000
	MaxColorLength  = 50
)

var allowedShapeTypes = map[string]bool{
	"rect":    true,
	"ellipse": true,
	"vector":  true,
	"text":    true,
}

// Common embedded structs shared by the per-type schemas.

// x,y coordinates for positioning shapes on the canvas
type position struct {
	X float64 `validate:"min=-1000000,max=1000000"`
	Y float64 `validate:"min=-1000000,max=1000000"`
}

// common styling properties for shapes
type styleProps struct {
	FillColor   string  `validate:"omitempty,max=50"`
	StrokeColor string  `validate:"omitempty,max=50"`
	StrokeWidth float64 `validate:"omitempty,min=0,max=1000"`
	Rotation    float64 `validate:"omitempty,min=-360,max=360"`
}

type rectSchema struct {
	position
	styleProps
	Width  float64 `validate:"min=0,max=1000000"`
	Height float64 `validate:"min=0,max=1000000"`
}

type ellipseSchema struct {
	position
	styleProps
	RadiusX float64 `validate:"min=0,max=1000000"`
	RadiusY float64 `validate:"min=0,max=1000000"`
}

type vectorSchema struct {
	styleProps
	Points []float64 `validate:"required,min=4,max=10000,dive,min=-1000000,max=1000000"`
}

type textSchema struct {
	position
	styleProps
	Width    float64 `validate:"min=0,max=1000000"`
	Height   float64 `validate:"min=0,max=1000000"`
	Text     string  `validate:"required,max=1000"`
	FontSize float64 `validate:"omitempty,min=1,max=500"`
	Color    string  `validate:"omitempty,max=50"`
}
