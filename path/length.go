package path

import (
	"math"

	"go.viam.com/motioncore/spatialmath"
)

// Length returns the arc length between global parameters a and b using Gaussian quadrature:
// whole segments strictly between them plus the partial lengths of the two boundary segments.
// It is negative when b < a.
func (p *Path) Length(a, b float64) float64 {
	if a > b {
		return -p.Length(b, a)
	}
	n := len(p.segments)
	ia, la := p.index(a)
	ib, lb := p.index(b)
	if ia == ib {
		return p.segments[ia].Length(la, lb)
	}
	length := p.segments[ia].Length(la, 1)
	for i := ia + 1; i < ib && i < n; i++ {
		length += p.segments[i].Length(0, 1)
	}
	return length + p.segments[ib].Length(0, lb)
}

// TotalLength returns the length of the whole path.
func (p *Path) TotalLength() float64 {
	var total float64
	for _, seg := range p.segments {
		total += seg.Length(0, 1)
	}
	return total
}

func (p *Path) index(t float64) (int, float64) {
	n := len(p.segments)
	scaled := t * float64(n)
	idx := int(math.Floor(scaled))
	switch {
	case t < 0:
		idx = 0
	case idx >= n:
		idx = n - 1
	}
	return idx, scaled - float64(idx)
}

// ParameterFromLength returns the global parameter whose arc length from the start is length.
// The result is clamped to [0, 1].
func (p *Path) ParameterFromLength(length float64) float64 {
	if length <= 0 {
		return 0
	}
	n := float64(len(p.segments))
	var covered float64
	for i, seg := range p.segments {
		segLength := seg.Length(0, 1)
		if covered+segLength >= length {
			return (float64(i) + seg.ParameterFromLength(length-covered)) / n
		}
		covered += segLength
	}
	return 1
}

// TransformFromLength returns the pose at the given arc length from the start. Lengths before the
// start or past the end dead-reckon along the start or end heading.
func (p *Path) TransformFromLength(length float64) spatialmath.Transform {
	if length < 0 {
		return p.Start().Translate(length)
	}
	total := p.TotalLength()
	if length > total {
		return p.End().Translate(length - total)
	}
	return p.Transform(p.ParameterFromLength(length))
}
