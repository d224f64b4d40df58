// Package spatialmath defines the planar pose types (Position, Rotation, Transform) shared by the
// geometry, path and follower packages.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Position is an immutable point (or vector) in the plane.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition returns the position (x, y).
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// NewPositionFromPoint converts an r2 point.
func NewPositionFromPoint(p r2.Point) Position {
	return Position{X: p.X, Y: p.Y}
}

// Point returns the position as an r2 point.
func (p Position) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Add returns p + other.
func (p Position) Add(other Position) Position {
	return NewPositionFromPoint(p.Point().Add(other.Point()))
}

// Sub returns p - other.
func (p Position) Sub(other Position) Position {
	return NewPositionFromPoint(p.Point().Sub(other.Point()))
}

// Scale multiplies both coordinates by s.
func (p Position) Scale(s float64) Position {
	return NewPositionFromPoint(p.Point().Mul(s))
}

// Norm is the length of p treated as a vector.
func (p Position) Norm() float64 {
	return p.Point().Norm()
}

// Distance returns the euclidean distance between p and other.
func (p Position) Distance(other Position) float64 {
	return p.Sub(other).Norm()
}

// Dot returns the dot product.
func (p Position) Dot(other Position) float64 {
	return p.Point().Dot(other.Point())
}

// Cross returns the z component of the cross product p x other.
func (p Position) Cross(other Position) float64 {
	return p.Point().Cross(other.Point())
}

// Normalize returns a unit vector in the direction of p, or the zero vector if p is zero.
func (p Position) Normalize() Position {
	return NewPositionFromPoint(p.Point().Normalize())
}

// Ortho returns p rotated a quarter turn counterclockwise.
func (p Position) Ortho() Position {
	return NewPositionFromPoint(p.Point().Ortho())
}

// Rotate rotates p about the origin.
func (p Position) Rotate(r Rotation) Position {
	c, s := r.Cos(), r.Sin()
	return Position{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// Angle returns the direction of p as a Rotation.
func (p Position) Angle() Rotation {
	return NewRotationFromRadians(math.Atan2(p.Y, p.X))
}

// AlmostEqual reports whether both coordinates are within epsilon.
func (p Position) AlmostEqual(other Position, epsilon float64) bool {
	return math.Abs(p.X-other.X) <= epsilon && math.Abs(p.Y-other.Y) <= epsilon
}

// IsFinite reports whether neither coordinate is NaN or infinite.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Position) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
}
