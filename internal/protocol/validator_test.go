package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
	"github.com/ollykel/WhiteboardEditor-sub000/internal/protocol"
)

func TestValidateShapePerType(t *testing.T) {
	v := protocol.NewValidator()

	testCases := []struct {
		name    string
		shape   model.ShapeModel
		wantErr bool
	}{
		{
			name:  "valid rect",
			shape: model.ShapeModel{Type: model.ShapeRect, X: 1, Y: 2, Width: 10, Height: 20},
		},
		{
			name:  "rect without extent passes schema, discard is the client's call",
			shape: model.ShapeModel{Type: model.ShapeRect, X: 1, Y: 2},
		},
		{
			name:  "valid ellipse",
			shape: model.ShapeModel{Type: model.ShapeEllipse, X: 5, Y: 5, RadiusX: 3, RadiusY: 4},
		},
		{
			name:  "valid vector",
			shape: model.ShapeModel{Type: model.ShapeVector, Points: []float64{0, 0, 10, 10}},
		},
		{
			name:    "vector with a lone point",
			shape:   model.ShapeModel{Type: model.ShapeVector, Points: []float64{5, 5}},
			wantErr: true,
		},
		{
			name:  "valid text",
			shape: model.ShapeModel{Type: model.ShapeText, X: 0, Y: 0, Width: 100, Height: 40, Text: "hello", FontSize: 20},
		},
		{
			name:    "text without content",
			shape:   model.ShapeModel{Type: model.ShapeText, X: 0, Y: 0, Width: 100, Height: 40, FontSize: 20},
			wantErr: true,
		},
		{
			name:    "unknown type",
			shape:   model.ShapeModel{Type: "scribble"},
			wantErr: true,
		},
		{
			name:    "rotation out of range",
			shape:   model.ShapeModel{Type: model.ShapeRect, Width: 10, Height: 10, Rotation: 720},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateShape(tc.shape)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, protocol.ErrProtocol)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMessageChecksEveryShapeInBatch(t *testing.T) {
	v := protocol.NewValidator()

	err := v.ValidateMessage(&protocol.CreateShapes{
		CanvasID: "c1",
		Shapes: []model.ShapeModel{
			{Type: model.ShapeRect, Width: 10, Height: 10},
			{Type: model.ShapeVector, Points: []float64{1, 1}},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape 1")
}

func TestValidateMessageRequiredFields(t *testing.T) {
	v := protocol.NewValidator()

	assert.Error(t, v.ValidateMessage(&protocol.Register{}), "username is required")
	assert.Error(t, v.ValidateMessage(&protocol.CreateCanvas{Width: 0, Height: 100}))
	assert.Error(t, v.ValidateMessage(&protocol.CreateShapes{CanvasID: "c1"}), "empty batch")
	assert.NoError(t, v.ValidateMessage(&protocol.Register{Username: "ann"}))
}

func TestSanitizeShapeStripsMarkup(t *testing.T) {
	v := protocol.NewValidator()

	dirty := model.ShapeModel{
		Type:      model.ShapeText,
		Text:      `hello <script>alert("x")</script>`,
		FillColor: "#ff0000",
		Color:     "<b>#000</b>",
	}
	clean := v.SanitizeShape(dirty)

	assert.Equal(t, "hello ", clean.Text)
	assert.Equal(t, "#ff0000", clean.FillColor)
	assert.NotContains(t, clean.Color, "<b>")
}
