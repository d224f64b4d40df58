package spatialmath

import (
	"fmt"
	"math"

	"go.viam.com/motioncore/utils"
)

// Rotation is a planar heading. The stored angle is always normalized to [-pi, pi), which is the
// radian form of mapping a heading into [-180, 180) degrees.
type Rotation struct {
	theta float64
}

// NewRotationFromRadians returns the normalized heading theta.
func NewRotationFromRadians(theta float64) Rotation {
	return Rotation{theta: utils.WrapToPi(theta)}
}

// NewRotationFromDegrees returns the normalized heading given in degrees.
func NewRotationFromDegrees(degrees float64) Rotation {
	return NewRotationFromRadians(utils.DegToRad(degrees))
}

// NewRotationFromVector returns the heading of the vector v.
func NewRotationFromVector(v Position) Rotation {
	return v.Angle()
}

// Radians returns the heading in radians, in [-pi, pi).
func (r Rotation) Radians() float64 {
	return r.theta
}

// Degrees returns the heading in degrees, in [-180, 180).
func (r Rotation) Degrees() float64 {
	return utils.RadToDeg(r.theta)
}

// Add composes two rotations.
func (r Rotation) Add(other Rotation) Rotation {
	return NewRotationFromRadians(r.theta + other.theta)
}

// Sub returns the shortest signed rotation taking other to r.
func (r Rotation) Sub(other Rotation) Rotation {
	return NewRotationFromRadians(r.theta - other.theta)
}

// Inverse returns the opposite rotation.
func (r Rotation) Inverse() Rotation {
	return NewRotationFromRadians(-r.theta)
}

// Reversed returns the heading turned by a half circle.
func (r Rotation) Reversed() Rotation {
	return NewRotationFromRadians(r.theta + math.Pi)
}

// Sin of the heading.
func (r Rotation) Sin() float64 { return math.Sin(r.theta) }

// Cos of the heading.
func (r Rotation) Cos() float64 { return math.Cos(r.theta) }

// Tan of the heading.
func (r Rotation) Tan() float64 { return math.Tan(r.theta) }

// Unit returns the unit vector pointing along the heading.
func (r Rotation) Unit() Position {
	return Position{X: r.Cos(), Y: r.Sin()}
}

// AlmostEqual compares headings on the circle, so -pi and pi-epsilon are close.
func (r Rotation) AlmostEqual(other Rotation, epsilon float64) bool {
	return math.Abs(r.Sub(other).theta) <= epsilon
}

func (r Rotation) String() string {
	return fmt.Sprintf("%.3fdeg", r.Degrees())
}
