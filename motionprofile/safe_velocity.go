package motionprofile

import "math"

// SafeVelocityController limits how fast a velocity command may change between control cycles.
type SafeVelocityController struct {
	MaxAcceleration float64
	MaxDeceleration float64
}

// Velocity moves current towards desired by at most one cycle's worth of acceleration or
// deceleration, never past desired.
func (c SafeVelocityController) Velocity(current, desired, dt float64) float64 {
	if current >= desired {
		return math.Max(current-c.MaxDeceleration*dt, desired)
	}
	return math.Min(current+c.MaxAcceleration*dt, desired)
}
