package protocol

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ollykel/WhiteboardEditor-sub000/internal/model"
)

// Validator checks inbound messages and shape payloads against their
// schemas and sanitizes user-supplied strings. Validation happens here
// and in the permission resolver only; data that reaches the store is
// already well-formed.
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

func NewValidator() *Validator {
	// removes all HTML/scripts
	policy := bluemonday.StrictPolicy()

	return &Validator{
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: policy,
	}
}

// ValidateMessage checks a decoded client message's required fields and
// ranges. Shape payloads are checked separately per shape type.
func (v *Validator) ValidateMessage(msg ClientMessage) error {
	if err := v.validate.Struct(msg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("%w: %v", ErrProtocol, formatValidationErrors(validationErrors))
		}
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	switch m := msg.(type) {
	case *CreateShapes:
		for i, shape := range m.Shapes {
			if err := v.ValidateShape(shape); err != nil {
				return fmt.Errorf("shape %d: %w", i, err)
			}
		}
	case *UpdateShape:
		if err := v.ValidateShape(m.Shape); err != nil {
			return err
		}
	}
	return nil
}

// ValidateShape checks a shape model against the schema for its type.
func (v *Validator) ValidateShape(m model.ShapeModel) error {
	if !allowedShapeTypes[m.Type] {
		return fmt.Errorf("%w: invalid shape type: %q (allowed types: rect, ellipse, vector, text)", ErrProtocol, m.Type)
	}

	var schema any
	switch m.Type {
	case model.ShapeRect:
		schema = rectSchema{
			position:   position{X: m.X, Y: m.Y},
			styleProps: styleFrom(m),
			Width:      m.Width,
			Height:     m.Height,
		}
	case model.ShapeEllipse:
		schema = ellipseSchema{
			position:   position{X: m.X, Y: m.Y},
			styleProps: styleFrom(m),
			RadiusX:    m.RadiusX,
			RadiusY:    m.RadiusY,
		}
	case model.ShapeVector:
		schema = vectorSchema{
			styleProps: styleFrom(m),
			Points:     m.Points,
		}
	case model.ShapeText:
		schema = textSchema{
			position:   position{X: m.X, Y: m.Y},
			styleProps: styleFrom(m),
			Width:      m.Width,
			Height:     m.Height,
			Text:       m.Text,
			FontSize:   m.FontSize,
			Color:      m.Color,
		}
	}

	if err := v.validate.Struct(schema); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return fmt.Errorf("%w: %v", ErrProtocol, formatValidationErrors(validationErrors))
		}
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}

func styleFrom(m model.ShapeModel) styleProps {
	return styleProps{
		FillColor:   m.FillColor,
		StrokeColor: m.StrokeColor,
		StrokeWidth: m.StrokeWidth,
		Rotation:    m.Rotation,
	}
}

// SanitizeString strips HTML and scripts from a user-supplied string.
func (v *Validator) SanitizeString(s string) string {
	return v.sanitizer.Sanitize(s)
}

// SanitizeShape sanitizes every string field of a shape model.
func (v *Validator) SanitizeShape(m model.ShapeModel) model.ShapeModel {
	m.FillColor = v.sanitizer.Sanitize(m.FillColor)
	m.StrokeColor = v.sanitizer.Sanitize(m.StrokeColor)
	m.Text = v.sanitizer.Sanitize(m.Text)
	m.Color = v.sanitizer.Sanitize(m.Color)
	return m
}

// formatValidationErrors converts validator errors to a user-friendly
// message. Returns the first error for simplicity.
func formatValidationErrors(errors validator.ValidationErrors) error {
	var messages []string
	for _, err := range errors {
		messages = append(messages, formatSingleError(err))
	}
	return fmt.Errorf("validation failed: %s", messages[0])
}

func formatSingleError(err validator.FieldError) string {
	field := err.Field()
	tag := err.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("'%s' is required", field)
	case "min", "max", "gt":
		return fmt.Sprintf("'%s' value out of allowed range", field)
	case "oneof":
		return fmt.Sprintf("'%s' is not an allowed value", field)
	default:
		return fmt.Sprintf("'%s' is invalid", field)
	}
}
