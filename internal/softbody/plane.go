package softbody

import (
	"github.com/san-kum/softsim/internal/dynamo"
)

// Frame is an external reference that seeds the contact plane.
type Frame struct {
	Position dynamo.Vec3
	Up       dynamo.Vec3
}

// NewPlane builds the contact plane from frame, or the horizontal plane
// through the origin when frame is nil.
func NewPlane(frame *Frame) (dynamo.Plane, error) {
	if frame == nil {
		return dynamo.DefaultPlane(), nil
	}
	if !dynamo.IsFinite(frame.Position) {
		return dynamo.Plane{}, &dynamo.ConfigError{Field: "plane.position", Value: frame.Position, Wrapped: dynamo.ErrInvalidParameter}
	}
	length := frame.Up.Len()
	if !dynamo.IsFinite(frame.Up) || length < 1e-12 {
		return dynamo.Plane{}, &dynamo.ConfigError{Field: "plane.up", Value: frame.Up, Wrapped: dynamo.ErrDegenerateNormal}
	}
	return dynamo.Plane{
		Position: frame.Position,
		Normal:   frame.Up.Mul(1.0 / length),
	}, nil
}
