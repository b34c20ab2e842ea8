package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

func TestZeroExtent(t *testing.T) {
	testCases := []struct {
		name  string
		shape model.ShapeModel
		want  bool
	}{
		{name: "rect with area", shape: model.ShapeModel{Type: model.ShapeRect, Width: 10, Height: 5}, want: false},
		{name: "rect with collapsed width", shape: model.ShapeModel{Type: model.ShapeRect, Width: 0, Height: 5}, want: true},
		{name: "ellipse with radii", shape: model.ShapeModel{Type: model.ShapeEllipse, RadiusX: 3, RadiusY: 3}, want: false},
		{name: "ellipse with collapsed radius", shape: model.ShapeModel{Type: model.ShapeEllipse, RadiusX: 3, RadiusY: 0}, want: true},
		{name: "vector with length", shape: model.ShapeModel{Type: model.ShapeVector, Points: []float64{0, 0, 4, 4}}, want: false},
		{name: "vector with coincident endpoints", shape: model.ShapeModel{Type: model.ShapeVector, Points: []float64{4, 4, 4, 4}}, want: true},
		{name: "vector with too few coordinates", shape: model.ShapeModel{Type: model.ShapeVector, Points: []float64{4, 4}}, want: true},
		{name: "text is never zero extent", shape: model.ShapeModel{Type: model.ShapeText, Text: "x"}, want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.shape.ZeroExtent())
		})
	}
}

func TestPermissionEntryResolved(t *testing.T) {
	resolved := model.PermissionEntry{Type: model.PermissionByUser, UserID: "u1", Role: model.RoleOwn}
	pending := model.PermissionEntry{Type: model.PermissionByEmail, Email: "a@b.c", Role: model.RoleOwn}

	assert.True(t, resolved.Resolved())
	assert.False(t, pending.Resolved())
	assert.False(t, model.PermissionEntry{Type: model.PermissionByUser, Role: model.RoleOwn}.Resolved())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, model.RoleOwn.Valid())
	assert.True(t, model.RoleEdit.Valid())
	assert.True(t, model.RoleView.Valid())
	assert.False(t, model.Role("admin").Valid())
}
