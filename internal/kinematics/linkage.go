// Package kinematics solves the position of a two-link slider-crank linkage and
// tabulates the trajectory of its interpolated point M over one drive cycle.
//
// The fixed pivot O sits at the origin. Link OA rotates about O, link AB joins A
// to the slider B, which is constrained to the x axis. M lies on AB at the
// fraction AM/AB measured from A. Everything is a function of a normalized
// progress in [0,1) covering one full revolution.
package kinematics

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrNonFinite is returned when a linkage field is NaN or infinite.
	ErrNonFinite = errors.New("non-finite linkage parameter")
	// ErrNegativeLength is returned when a link length is negative.
	ErrNegativeLength = errors.New("negative link length")
	// ErrCollapsed is returned when both links have zero length, which places
	// B on top of O for every progress.
	ErrCollapsed = errors.New("both links have zero length")
)

// Point is a position in the plane of the mechanism.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Origin is the fixed pivot O.
var Origin = Point{}

// Vec returns p as a gonum vector.
func (p Point) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// PointOf converts a gonum vector to a Point.
func PointOf(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Finite reports whether both coordinates are finite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Pose is the solved position of the joints for a single progress value.
type Pose struct {
	A Point `json:"a"`
	B Point `json:"b"`
	M Point `json:"m"`
}

// Finite reports whether every coordinate of the pose is a finite number.
// A non-finite pose means the linkage had no real solution at that progress.
func (p Pose) Finite() bool {
	return p.A.Finite() && p.B.Finite() && p.M.Finite()
}

// Linkage holds the parameters that define the mechanism geometry.
type Linkage struct {
	OA      float64 `json:"oa"`        // length of the crank OA
	AB      float64 `json:"ab"`        // length of the connecting rod AB
	AMPerAB float64 `json:"am_per_ab"` // position of M along AB, usually in [0,1]
}

// Solve returns the pose of l at the given progress.
func (l Linkage) Solve(progress float64) Pose {
	return Solve(l.OA, l.AB, l.AMPerAB, progress)
}

// Validate rejects parameters Solve cannot work with at all: non-finite
// values, negative lengths and the collapsed oa = ab = 0 linkage. A nil result
// does not guarantee a finite pose everywhere; rounding can leave A.y NaN at the
// dead centres of an otherwise valid linkage. Solve does not call it.
func (l Linkage) Validate() error {
	for _, v := range []float64{l.OA, l.AB, l.AMPerAB} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: oa=%v ab=%v am_per_ab=%v", ErrNonFinite, l.OA, l.AB, l.AMPerAB)
		}
	}
	if l.OA < 0 || l.AB < 0 {
		return fmt.Errorf("%w: oa=%v ab=%v", ErrNegativeLength, l.OA, l.AB)
	}
	if l.OA == 0 && l.AB == 0 {
		return ErrCollapsed
	}
	return nil
}
