// Package path composes parametric segments into a single curve with one normalized parameter,
// and answers the arc length, nearest point and replanning queries the followers need.
//
// A Path with N segments maps t in [0, 1] uniformly onto them: segment i owns [i/N, (i+1)/N).
// Arc length is computed with quadrature on every call and is never cached; callers that query
// the same length repeatedly should keep the result.
package path

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/motioncore/spatialmath"
	"go.viam.com/motioncore/spline"
)

const (
	// DefaultSearchIncrement and DefaultSearches are the coarse nearest-point settings, 30
	// evaluations total, used when only a rough answer is needed.
	DefaultSearchIncrement = 10
	DefaultSearches        = 3

	coincidentEpsilon = 1e-9
)

// Sample is a pose on the path together with the global parameter it was found at.
type Sample struct {
	Transform spatialmath.Transform
	T         float64
}

// Path is an ordered list of parametric segments treated as one curve.
type Path struct {
	segments []spline.Parametric
	builder  spline.Builder
}

// NewPath returns a path over the given segments. There must be at least one segment.
func NewPath(segments []spline.Parametric) (*Path, error) {
	p := &Path{}
	if err := p.SetParametrics(segments); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPathFromWaypoints fits segments through the waypoints with builder. The builder is kept so
// that Adapt can refit a spliced waypoint list the same way.
func NewPathFromWaypoints(waypoints []spatialmath.Transform, builder spline.Builder) (*Path, error) {
	if builder == nil {
		return nil, errors.New("path builder cannot be nil")
	}
	segments, err := builder(waypoints)
	if err != nil {
		return nil, errors.Wrap(err, "cannot build path from waypoints")
	}
	p, err := NewPath(segments)
	if err != nil {
		return nil, err
	}
	p.builder = builder
	return p, nil
}

// SetParametrics replaces every segment of the path.
func (p *Path) SetParametrics(segments []spline.Parametric) error {
	if len(segments) == 0 {
		return errors.New("path needs at least one segment")
	}
	for i, seg := range segments {
		if seg == nil {
			return errors.Errorf("path segment %d is nil", i)
		}
	}
	p.segments = append([]spline.Parametric(nil), segments...)
	return nil
}

// Parametrics returns a copy of the path's segments.
func (p *Path) Parametrics() []spline.Parametric {
	return append([]spline.Parametric(nil), p.segments...)
}

// NumSegments returns N.
func (p *Path) NumSegments() int {
	return len(p.segments)
}

// Waypoints returns the N+1 segment endpoints.
func (p *Path) Waypoints() []spatialmath.Transform {
	waypoints := lo.Map(p.segments, func(seg spline.Parametric, _ int) spatialmath.Transform {
		return seg.Transform(0)
	})
	return append(waypoints, p.segments[len(p.segments)-1].Transform(1))
}

// ReversedWaypoints returns the waypoints from end to start with every heading turned around. A
// path fit through them runs the same route in the opposite direction.
func (p *Path) ReversedWaypoints() []spatialmath.Transform {
	return lo.Reverse(lo.Map(p.Waypoints(), func(w spatialmath.Transform, _ int) spatialmath.Transform {
		return w.Reversed()
	}))
}

// segmentAt routes a global parameter to its segment and local parameter. Parameters below 0 or
// above 1 stay on the first or last segment with an extrapolated local parameter.
func (p *Path) segmentAt(t float64) (spline.Parametric, float64) {
	idx, local := p.index(t)
	return p.segments[idx], local
}

// Transform returns the pose at t.
func (p *Path) Transform(t float64) spatialmath.Transform {
	seg, local := p.segmentAt(t)
	return seg.Transform(local)
}

// Position returns the point at t.
func (p *Path) Position(t float64) spatialmath.Position {
	seg, local := p.segmentAt(t)
	return seg.Position(local)
}

// Rotation returns the heading at t.
func (p *Path) Rotation(t float64) spatialmath.Rotation {
	seg, local := p.segmentAt(t)
	return seg.Rotation(local)
}

// Curvature returns the signed curvature at t.
func (p *Path) Curvature(t float64) float64 {
	seg, local := p.segmentAt(t)
	return seg.Curvature(local)
}

// FirstDerivative returns the owning segment's first derivative at t, with respect to the local
// parameter.
func (p *Path) FirstDerivative(t float64) spatialmath.Position {
	seg, local := p.segmentAt(t)
	return seg.FirstDerivative(local)
}

// SecondDerivative returns the owning segment's second derivative at t, with respect to the local
// parameter.
func (p *Path) SecondDerivative(t float64) spatialmath.Position {
	seg, local := p.segmentAt(t)
	return seg.SecondDerivative(local)
}

// Start returns the pose at t = 0.
func (p *Path) Start() spatialmath.Transform {
	return p.segments[0].Transform(0)
}

// End returns the pose at t = 1.
func (p *Path) End() spatialmath.Transform {
	return p.segments[len(p.segments)-1].Transform(1)
}
