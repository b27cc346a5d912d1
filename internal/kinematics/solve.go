package kinematics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Solve computes the joint positions for crank length oa, rod length ab and
// interpolation ratio amPerAB at the given progress.
//
// The slider distance OB depends on which link is longer, and the three
// configurations are kept as separate branches. A is the intersection of the
// circles around O (radius oa) and B (radius ab); it lies below the x axis for
// the first half of the cycle and above it from progress 0.5 on.
//
// No validation is done. A zero OB or a negative discriminant yields NaN or
// infinite coordinates, which callers can detect with Pose.Finite.
func Solve(oa, ab, amPerAB, progress float64) Pose {
	t := progress * 2 * math.Pi

	var ob float64
	switch {
	case oa < ab:
		ob = oa*math.Cos(t) + ab
	case oa == ab:
		ob = (oa + ab) * math.Cos(t)
	default:
		ob = oa + ab*math.Cos(t)
	}

	b := r2.Vec{X: ob}

	ax := (ob*ob + oa*oa - ab*ab) / (2 * ob)
	ay := math.Sqrt(oa*oa - ax*ax)
	if progress < 0.5 {
		ay = -ay
	}
	a := r2.Vec{X: ax, Y: ay}

	m := a
	if ab != 0 {
		m = r2.Add(a, r2.Scale(amPerAB, r2.Sub(b, a)))
	}

	return Pose{A: PointOf(a), B: PointOf(b), M: PointOf(m)}
}
