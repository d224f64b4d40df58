package trajectory

import (
	"math"

	"go.viam.com/motioncore/path"
)

// Parameterize picks path parameters so that consecutive samples are at most maxDistanceDelta
// apart and turn by at most maxAngleDelta radians. Spans are halved until they satisfy both or
// have been split maxDepth times. The result starts at 0, ends at 1 and increases.
func Parameterize(p *path.Path, maxDistanceDelta, maxAngleDelta float64, maxDepth int) []float64 {
	type span struct {
		a, b  float64
		depth int
	}
	params := []float64{0}
	// Depth-first with the left half on top keeps the output ordered.
	stack := []span{{a: 0, b: 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.depth < maxDepth && tooCoarse(p, s.a, s.b, maxDistanceDelta, maxAngleDelta) {
			mid := (s.a + s.b) / 2
			stack = append(stack, span{a: mid, b: s.b, depth: s.depth + 1}, span{a: s.a, b: mid, depth: s.depth + 1})
			continue
		}
		params = append(params, s.b)
	}
	return params
}

func tooCoarse(p *path.Path, a, b, maxDistanceDelta, maxAngleDelta float64) bool {
	if maxDistanceDelta > 0 && p.Length(a, b) > maxDistanceDelta {
		return true
	}
	turn := math.Abs(p.Rotation(b).Sub(p.Rotation(a)).Radians())
	return maxAngleDelta > 0 && turn > maxAngleDelta
}
