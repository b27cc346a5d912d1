package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

func TestSolve_EqualLinksAtStart(t *testing.T) {
	pose := Solve(1, 1, 0.5, 0)

	assert.InDelta(t, 1.0, pose.A.X, tol)
	assert.Equal(t, 0.0, pose.A.Y)
	assert.True(t, math.Signbit(pose.A.Y), "A.y should be negative zero before mid-cycle")
	assert.Equal(t, Point{X: 2, Y: 0}, pose.B)
	assert.InDelta(t, 1.5, pose.M.X, tol)
	assert.InDelta(t, 0.0, pose.M.Y, tol)
}

func TestSolve_LinkageMethodMatchesFunction(t *testing.T) {
	l := Linkage{OA: 0.7, AB: 1.3, AMPerAB: 0.25}
	for _, p := range []float64{0, 0.1, 0.33, 0.5, 0.8} {
		assert.Equal(t, Solve(l.OA, l.AB, l.AMPerAB, p), l.Solve(p))
	}
}

func TestSolve_BranchesAroundEqualLinks(t *testing.T) {
	const ab = 1.0
	for _, p := range []float64{0, 0.1, 0.25, 0.4, 0.5, 0.6, 0.9} {
		below := Solve(ab-1e-9, ab, 0.5, p).B.X
		above := Solve(ab+1e-9, ab, 0.5, p).B.X
		equal := Solve(ab, ab, 0.5, p).B.X

		// The unequal branches converge on ab*(1+cos t) from either side.
		assert.True(t, scalar.EqualWithinAbs(below, above, 1e-6), "p=%v below=%v above=%v", p, below, above)
		assert.InDelta(t, ab*(1+math.Cos(p*2*math.Pi)), below, 1e-6)
		// The equal branch keeps its own formula, 2*ab*cos t.
		assert.InDelta(t, 2*ab*math.Cos(p*2*math.Pi), equal, tol)
	}

	// At the start of the cycle all three agree.
	assert.InDelta(t, Solve(ab, ab, 0, 0).B.X, Solve(ab-1e-9, ab, 0, 0).B.X, 1e-6)
	assert.InDelta(t, Solve(ab, ab, 0, 0).B.X, Solve(ab+1e-9, ab, 0, 0).B.X, 1e-6)
}

func TestSolve_SignFlipsAtMidCycle(t *testing.T) {
	for _, l := range []Linkage{
		{OA: 1, AB: 2, AMPerAB: 0.5},
		{OA: 2, AB: 1, AMPerAB: 0.5},
		{OA: 1, AB: 1, AMPerAB: 0.5},
	} {
		for i := 1; i < 50; i++ {
			p := float64(i) / 100
			assert.LessOrEqual(t, l.Solve(p).A.Y, 0.0, "%+v p=%v", l, p)
			assert.GreaterOrEqual(t, l.Solve(p+0.5).A.Y, 0.0, "%+v p=%v", l, p+0.5)
		}
	}

	mid := Solve(1, 2, 0.5, 0.5)
	require.False(t, math.IsNaN(mid.A.Y))
	assert.False(t, math.Signbit(mid.A.Y), "progress 0.5 takes the non-negative root")
}

func TestSolve_ZeroRodCollapsesMOntoA(t *testing.T) {
	for i := 0; i < 20; i++ {
		p := float64(i) / 20
		pose := Solve(1.5, 0, 0.75, p)
		assert.Equal(t, pose.A, pose.M, "p=%v", p)
	}
}

func TestSolve_InterpolatesAlongRod(t *testing.T) {
	l := Linkage{OA: 1, AB: 3, AMPerAB: 0.25}
	pose := l.Solve(0.3)

	assert.InDelta(t, pose.A.X+0.25*(pose.B.X-pose.A.X), pose.M.X, tol)
	assert.InDelta(t, pose.A.Y+0.25*(pose.B.Y-pose.A.Y), pose.M.Y, tol)
	assert.InDelta(t, l.OA, math.Hypot(pose.A.X, pose.A.Y), 1e-9)
	assert.InDelta(t, l.AB, math.Hypot(pose.B.X-pose.A.X, pose.B.Y-pose.A.Y), 1e-9)
}

func TestSolve_DegenerateGeometryIsNotFinite(t *testing.T) {
	pose := Solve(0, 0, 0.5, 0.2)
	assert.False(t, pose.Finite())

	assert.True(t, Solve(1, 2, 0.5, 0.2).Finite())
}

func TestSolve_RoundingAtDeadCentre(t *testing.T) {
	l := Linkage{OA: 0.3, AB: 0.7, AMPerAB: 0.5}
	require.NoError(t, l.Validate())

	pose := l.Solve(0)
	assert.True(t, math.IsNaN(pose.A.Y), "a_x rounds past oa, the root is not clamped")
	assert.False(t, pose.Finite())
	assert.True(t, l.Solve(0.25).Finite())
	assert.False(t, Tabulate(l, 500).Finite())
}

func TestLinkage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		linkage Linkage
		wantErr error
	}{
		{"default", Linkage{OA: 1, AB: 1, AMPerAB: 0.5}, nil},
		{"zero crank", Linkage{OA: 0, AB: 1, AMPerAB: 0.5}, nil},
		{"zero rod", Linkage{OA: 1, AB: 0, AMPerAB: 0.5}, nil},
		{"ratio outside unit range", Linkage{OA: 1, AB: 2, AMPerAB: 1.5}, nil},
		{"negative crank", Linkage{OA: -1, AB: 1}, ErrNegativeLength},
		{"negative rod", Linkage{OA: 1, AB: -0.1}, ErrNegativeLength},
		{"collapsed", Linkage{}, ErrCollapsed},
		{"nan", Linkage{OA: math.NaN(), AB: 1}, ErrNonFinite},
		{"inf ratio", Linkage{OA: 1, AB: 1, AMPerAB: math.Inf(1)}, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.linkage.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
