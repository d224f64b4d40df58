package path

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/motioncore/spatialmath"
)

// AdaptiveWaypoints returns a waypoint list that starts at pose and joins the path at the nearest
// unvisited waypoint, keeping every later waypoint. A waypoint is unvisited when its own closest
// parameter lies ahead of pose's; of those, the one with the smallest parameter is nearest along
// the route. With adaptToHeading false the start keeps pose's position but takes the path's
// heading at the closest point.
func (p *Path) AdaptiveWaypoints(pose spatialmath.Transform, adaptToHeading bool) []spatialmath.Transform {
	closest := p.ClosestTransform(pose.Position, DefaultSearchIncrement, DefaultSearches)
	waypoints := p.Waypoints()

	next := len(waypoints) - 1
	nextT := math.Inf(1)
	for j, w := range waypoints {
		t := p.ClosestTransform(w.Position, DefaultSearchIncrement, DefaultSearches).T
		if t > closest.T && t < nextT {
			next, nextT = j, t
		}
	}

	start := pose
	if !adaptToHeading {
		start = pose.WithRotation(closest.Transform.Rotation)
	}
	adapted := make([]spatialmath.Transform, 0, len(waypoints)-next+1)
	adapted = append(adapted, start)
	for _, w := range waypoints[next:] {
		if w.Distance(adapted[len(adapted)-1]) < coincidentEpsilon {
			continue
		}
		adapted = append(adapted, w)
	}
	return adapted
}

// Adapt returns a new path spliced onto pose, fit with the builder this path was created with.
func (p *Path) Adapt(pose spatialmath.Transform, adaptToHeading bool) (*Path, error) {
	if p.builder == nil {
		return nil, errors.New("path was not built from waypoints and cannot be adapted")
	}
	waypoints := p.AdaptiveWaypoints(pose, adaptToHeading)
	if len(waypoints) < 2 {
		return nil, errors.Errorf("pose %v is already at the end of the path", pose.Position)
	}
	return NewPathFromWaypoints(waypoints, p.builder)
}
