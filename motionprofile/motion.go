// Package motionprofile shapes single-axis point-to-point motion under velocity, acceleration
// and jerk limits. Profiles are planned once at construction as a chain of constant-jerk
// segments and are immutable afterwards, so a profile can be evaluated from any goroutine.
package motionprofile

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// MotionState is a point on a single-axis motion.
type MotionState struct {
	Position     float64 `json:"position"`
	Velocity     float64 `json:"velocity"`
	Acceleration float64 `json:"acceleration,omitempty"`
	Time         float64 `json:"time,omitempty"`
}

func (s MotionState) String() string {
	return fmt.Sprintf("t=%.4f pos=%.4f vel=%.4f acc=%.4f", s.Time, s.Position, s.Velocity, s.Acceleration)
}

// Constraints limit a profile. MaxJerk is only used by the S-curve profile.
type Constraints struct {
	MaxAcceleration float64 `json:"max_acceleration"`
	MaxDeceleration float64 `json:"max_deceleration"`
	MaxVelocity     float64 `json:"max_velocity"`
	MaxJerk         float64 `json:"max_jerk,omitempty"`
}

// Validate ensures all parts of the constraints are valid.
func (c Constraints) Validate() error {
	var err error
	check := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			err = multierr.Append(err, errors.Errorf("%s must be positive and finite, got %v", name, v))
		}
	}
	check("max_acceleration", c.MaxAcceleration)
	check("max_deceleration", c.MaxDeceleration)
	check("max_velocity", c.MaxVelocity)
	if c.MaxJerk < 0 || math.IsNaN(c.MaxJerk) {
		err = multierr.Append(err, errors.Errorf("max_jerk cannot be negative, got %v", c.MaxJerk))
	}
	return err
}

// OverrideMethod picks what a profile does when the requested end state cannot be reached
// within the constraints.
type OverrideMethod int

const (
	// EndAfterSetpoint performs the limited velocity change only and ends wherever that lands.
	EndAfterSetpoint OverrideMethod = iota
	// Overshoot brakes to rest past the setpoint and then returns to it.
	Overshoot
	// ViolateConstraints scales acceleration and jerk up until the end state is reachable.
	ViolateConstraints
)

var overrideNames = map[OverrideMethod]string{
	EndAfterSetpoint:   "end_after_setpoint",
	Overshoot:          "overshoot",
	ViolateConstraints: "violate_constraints",
}

func (m OverrideMethod) String() string {
	if name, ok := overrideNames[m]; ok {
		return name
	}
	return fmt.Sprintf("OverrideMethod(%d)", int(m))
}

// ParseOverrideMethod parses the string form of an OverrideMethod. The empty string selects
// EndAfterSetpoint.
func ParseOverrideMethod(s string) (OverrideMethod, error) {
	if s == "" {
		return EndAfterSetpoint, nil
	}
	for method, name := range overrideNames {
		if strings.EqualFold(s, name) {
			return method, nil
		}
	}
	return EndAfterSetpoint, errors.Errorf("unknown override method %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m OverrideMethod) MarshalText() ([]byte, error) {
	if _, ok := overrideNames[m]; !ok {
		return nil, errors.Errorf("unknown override method %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *OverrideMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseOverrideMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MechanismBounds is the travel range of a mechanism. A profile evaluated outside it reports the
// nearest bound at rest.
type MechanismBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate ensures the bounds describe a range.
func (b MechanismBounds) Validate() error {
	if b.Min > b.Max {
		return errors.Errorf("mechanism bounds min %v is above max %v", b.Min, b.Max)
	}
	return nil
}

func (b MechanismBounds) apply(s MotionState) MotionState {
	switch {
	case s.Position < b.Min:
		return MotionState{Position: b.Min, Time: s.Time}
	case s.Position > b.Max:
		return MotionState{Position: b.Max, Time: s.Time}
	default:
		return s
	}
}

// Profile is a planned single-axis motion.
type Profile interface {
	// StateAt returns the planned state t seconds after the start.
	StateAt(t float64) MotionState
	Duration() float64
	IsFinished(t float64) bool
	Segments() []MotionSegment
}
