package path

import (
	"math"

	"go.viam.com/motioncore/spatialmath"
)

// gridMinimize is a coarse-to-fine grid search for the minimum of objective over [lo, hi]. Each of
// the searches passes evaluates searchIncrement+1 evenly spaced samples across the current
// bracket and then narrows the bracket to one step either side of the best sample. The cost is
// fixed by the caller, which keeps it usable inside a control loop; segment joints where
// curvature jumps rule out derivative-based minimization anyway.
func gridMinimize(objective func(t float64) float64, lo, hi float64, searchIncrement, searches int) float64 {
	if searchIncrement < 1 {
		searchIncrement = DefaultSearchIncrement
	}
	if searches < 1 {
		searches = DefaultSearches
	}
	bestT := lo
	bestValue := math.Inf(1)
	for pass := 0; pass < searches; pass++ {
		step := (hi - lo) / float64(searchIncrement)
		for i := 0; i <= searchIncrement; i++ {
			t := lo + step*float64(i)
			if i == searchIncrement {
				t = hi
			}
			if value := objective(t); value < bestValue {
				bestValue = value
				bestT = t
			}
		}
		lo = math.Max(lo, bestT-step)
		hi = math.Min(hi, bestT+step)
	}
	return bestT
}

// ClosestTransform returns the point of the path nearest to pos.
func (p *Path) ClosestTransform(pos spatialmath.Position, searchIncrement, searches int) Sample {
	t := gridMinimize(func(t float64) float64 {
		return p.Position(t).Distance(pos)
	}, 0, 1, searchIncrement, searches)
	return Sample{Transform: p.Transform(t), T: t}
}

// ClosestTransformShifted returns the point of the path at straight-line distance |shift| from pos,
// searched ahead of the closest point when shift is positive and behind it when negative. When the
// end of the path is already within shift of pos, the end pose is extended along its heading by
// the remaining distance and reported at T = 1.
func (p *Path) ClosestTransformShifted(pos spatialmath.Position, shift float64, searchIncrement, searches int) Sample {
	closest := p.ClosestTransform(pos, searchIncrement, searches)
	if shift == 0 {
		return closest
	}
	if shift > 0 {
		end := p.End()
		if remaining := end.Position.Distance(pos); remaining <= shift {
			return Sample{Transform: end.Translate(shift - remaining), T: 1}
		}
	}

	lo, hi := closest.T, 1.0
	if shift < 0 {
		lo, hi = 0, closest.T
	}
	target := math.Abs(shift)
	t := gridMinimize(func(t float64) float64 {
		return math.Abs(p.Position(t).Distance(pos) - target)
	}, lo, hi, searchIncrement, searches)
	return Sample{Transform: p.Transform(t), T: t}
}
