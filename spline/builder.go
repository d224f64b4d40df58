package spline

import (
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/motioncore/spatialmath"
)

// minWaypointSpacing is the distance under which two consecutive waypoints are considered the same.
const minWaypointSpacing = 1e-9

// Builder fits curve segments through an ordered list of waypoints, one segment per consecutive
// pair.
type Builder func(waypoints []spatialmath.Transform) ([]Parametric, error)

// CubicHermiteBuilder fits cubic Hermite segments.
func CubicHermiteBuilder(waypoints []spatialmath.Transform) ([]Parametric, error) {
	return buildSegments(waypoints, func(start, end spatialmath.Transform) Parametric {
		return NewCubicHermite(start, end, HermiteOptions{})
	})
}

// QuinticHermiteBuilder fits quintic Hermite segments with zero curvature at every waypoint.
func QuinticHermiteBuilder(waypoints []spatialmath.Transform) ([]Parametric, error) {
	return buildSegments(waypoints, func(start, end spatialmath.Transform) Parametric {
		return NewQuinticHermite(start, end, HermiteOptions{})
	})
}

// BuilderByName returns the builder called "cubic" or "quintic".
func BuilderByName(name string) (Builder, error) {
	switch strings.ToLower(name) {
	case "cubic", "cubic_hermite":
		return CubicHermiteBuilder, nil
	case "quintic", "quintic_hermite", "":
		return QuinticHermiteBuilder, nil
	default:
		return nil, errors.Errorf("unknown spline type %q", name)
	}
}

func buildSegments(
	waypoints []spatialmath.Transform,
	fit func(start, end spatialmath.Transform) Parametric,
) ([]Parametric, error) {
	if len(waypoints) < 2 {
		return nil, errors.Errorf("need at least 2 waypoints to build a path, got %d", len(waypoints))
	}
	segments := make([]Parametric, 0, len(waypoints)-1)
	for i := 1; i < len(waypoints); i++ {
		if waypoints[i-1].Distance(waypoints[i]) < minWaypointSpacing {
			return nil, errors.Errorf("waypoints %d and %d coincide at %v", i-1, i, waypoints[i].Position)
		}
		segments = append(segments, fit(waypoints[i-1], waypoints[i]))
	}
	return segments, nil
}
