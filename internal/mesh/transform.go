package mesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/dynamo"
)

// Transform maps mesh-local coordinates to world space as
// translate · rotate · scale.
type Transform struct {
	Translation dynamo.Vec3
	Rotation    mgl64.Quat
	Scale       dynamo.Vec3
}

func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    dynamo.Vec3{1, 1, 1},
	}
}

// NewTransform builds a transform from Euler angles in degrees applied in
// X, Y, Z order.
func NewTransform(translation, rotationDeg, scale dynamo.Vec3) Transform {
	rot := mgl64.AnglesToQuat(
		mgl64.DegToRad(rotationDeg[0]),
		mgl64.DegToRad(rotationDeg[1]),
		mgl64.DegToRad(rotationDeg[2]),
		mgl64.XYZ,
	)
	return Transform{Translation: translation, Rotation: rot, Scale: scale}
}

// Validate rejects transforms that cannot be inverted.
func (t Transform) Validate() error {
	for i, s := range t.Scale {
		if math.Abs(s) < 1e-12 || math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("scale[%d]=%v: transform is not invertible", i, s)
		}
	}
	if !dynamo.IsFinite(t.Translation) {
		return fmt.Errorf("translation %v is not finite", t.Translation)
	}
	return nil
}

func (t Transform) Matrix() mgl64.Mat4 {
	tr := mgl64.Translate3D(t.Translation.Elem())
	sc := mgl64.Scale3D(t.Scale.Elem())
	return tr.Mul4(t.Rotation.Normalize().Mat4()).Mul4(sc)
}

func (t Transform) TransformPoint(p dynamo.Vec3) dynamo.Vec3 {
	return mgl64.TransformCoordinate(p, t.Matrix())
}

func (t Transform) InverseTransformPoint(p dynamo.Vec3) dynamo.Vec3 {
	return mgl64.TransformCoordinate(p, t.Matrix().Inv())
}

// Up returns the transform's local +Y axis in world space, unnormalized.
func (t Transform) Up() dynamo.Vec3 {
	return t.Rotation.Normalize().Rotate(dynamo.Up).Mul(t.Scale[1])
}
