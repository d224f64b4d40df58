package spatialmath

import (
	"fmt"
)

// Transform is a planar pose: a position and the heading at that position.
// Transforms are values; every method returns a new Transform.
type Transform struct {
	Position Position
	Rotation Rotation
}

// NewTransform returns the pose at (x, y) facing headingDegrees.
func NewTransform(x, y, headingDegrees float64) Transform {
	return Transform{Position: NewPosition(x, y), Rotation: NewRotationFromDegrees(headingDegrees)}
}

// NewZeroTransform returns the pose at the origin facing +x.
func NewZeroTransform() Transform {
	return Transform{}
}

// Compose applies local, expressed in t's frame, on top of t.
func (t Transform) Compose(local Transform) Transform {
	return Transform{
		Position: t.Position.Add(local.Position.Rotate(t.Rotation)),
		Rotation: t.Rotation.Add(local.Rotation),
	}
}

// RelativeTo expresses t in the frame of origin. It is the inverse of Compose:
// origin.Compose(t.RelativeTo(origin)) == t.
func (t Transform) RelativeTo(origin Transform) Transform {
	return Transform{
		Position: t.Position.Sub(origin.Position).Rotate(origin.Rotation.Inverse()),
		Rotation: t.Rotation.Sub(origin.Rotation),
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	return Transform{
		Position: t.Position.Scale(-1).Rotate(inv),
		Rotation: inv,
	}
}

// Translate moves the pose distance units along its heading (backwards when negative).
func (t Transform) Translate(distance float64) Transform {
	return Transform{
		Position: t.Position.Add(t.Rotation.Unit().Scale(distance)),
		Rotation: t.Rotation,
	}
}

// Reversed keeps the position and turns the heading around.
func (t Transform) Reversed() Transform {
	return Transform{Position: t.Position, Rotation: t.Rotation.Reversed()}
}

// WithRotation returns t with its heading replaced.
func (t Transform) WithRotation(r Rotation) Transform {
	return Transform{Position: t.Position, Rotation: r}
}

// Distance between the positions of two poses.
func (t Transform) Distance(other Transform) float64 {
	return t.Position.Distance(other.Position)
}

// AlmostEqual compares positions within linearEpsilon and headings within angularEpsilon radians.
func (t Transform) AlmostEqual(other Transform, linearEpsilon, angularEpsilon float64) bool {
	return t.Position.AlmostEqual(other.Position, linearEpsilon) && t.Rotation.AlmostEqual(other.Rotation, angularEpsilon)
}

func (t Transform) String() string {
	return fmt.Sprintf("{%v %v}", t.Position, t.Rotation)
}
