package trajectory

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"go.viam.com/motioncore/drivetrain"
)

// Trajectory is a table of samples along a path. All slices are parallel and Times increases.
type Trajectory struct {
	Parameters        []float64 `json:"parameters"`
	Distances         []float64 `json:"distances"`
	LinearVelocities  []float64 `json:"linear_velocities"`
	AngularVelocities []float64 `json:"angular_velocities"`
	Curvatures        []float64 `json:"curvatures"`
	Times             []float64 `json:"times"`
	TrackWidth        float64   `json:"track_width"`
}

// Len returns the number of samples.
func (t *Trajectory) Len() int {
	return len(t.Times)
}

// Duration is the time of the last sample.
func (t *Trajectory) Duration() float64 {
	if len(t.Times) == 0 {
		return 0
	}
	return t.Times[len(t.Times)-1]
}

// Length is the arc length covered.
func (t *Trajectory) Length() float64 {
	if len(t.Distances) == 0 {
		return 0
	}
	return t.Distances[len(t.Distances)-1]
}

// StateAt returns the drive command at the given time, interpolated between the samples around it.
func (t *Trajectory) StateAt(time float64) drivetrain.State {
	n := t.Len()
	if n == 0 {
		return drivetrain.Empty()
	}
	i := sort.SearchFloat64s(t.Times, time)
	switch {
	case i == 0:
		return t.stateOf(0)
	case i >= n:
		return t.stateOf(n - 1)
	}
	span := t.Times[i] - t.Times[i-1]
	if span <= 0 {
		return t.stateOf(i)
	}
	frac := (time - t.Times[i-1]) / span
	linear := t.LinearVelocities[i-1] + frac*(t.LinearVelocities[i]-t.LinearVelocities[i-1])
	angular := t.AngularVelocities[i-1] + frac*(t.AngularVelocities[i]-t.AngularVelocities[i-1])
	return drivetrain.FromLinearAndAngular(linear, angular, t.TrackWidth)
}

func (t *Trajectory) stateOf(i int) drivetrain.State {
	return drivetrain.FromLinearAndAngular(t.LinearVelocities[i], t.AngularVelocities[i], t.TrackWidth)
}

// Summary is the headline numbers of a trajectory.
type Summary struct {
	Samples            int
	Length             float64
	Duration           float64
	MaxLinearVelocity  float64
	MaxAngularVelocity float64
}

// Summary reports the trajectory's extremes.
func (t *Trajectory) Summary() Summary {
	s := Summary{Samples: t.Len(), Length: t.Length(), Duration: t.Duration()}
	if s.Samples == 0 {
		return s
	}
	s.MaxLinearVelocity = floats.Max(t.LinearVelocities)
	angular := make([]float64, s.Samples)
	for i, w := range t.AngularVelocities {
		if w < 0 {
			w = -w
		}
		angular[i] = w
	}
	s.MaxAngularVelocity = floats.Max(angular)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d samples, %.3f long, %.3fs, max linear %.3f, max angular %.3f",
		s.Samples, s.Length, s.Duration, s.MaxLinearVelocity, s.MaxAngularVelocity)
}
