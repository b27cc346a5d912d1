package kinematics

import "math"

// Path is the trajectory of M sampled at evenly spaced progress values.
// Element i corresponds to progress i/len(path).
type Path []Point

// Tabulate samples M over one full cycle at the given resolution.
func Tabulate(l Linkage, resolution int) Path {
	if resolution <= 0 {
		return Path{}
	}
	p := make(Path, resolution)
	p.Fill(l)
	return p
}

// Fill recomputes every element of p for linkage l, keeping its length.
func (p Path) Fill(l Linkage) {
	n := float64(len(p))
	for i := range p {
		p[i] = l.Solve(float64(i) / n).M
	}
}

// Finite reports whether every point of p has finite coordinates.
func (p Path) Finite() bool {
	for _, pt := range p {
		if !pt.Finite() {
			return false
		}
	}
	return true
}

// Visible returns the prefix of p traced up to the given progress:
// floor(progress * len(p)) points, clamped to the path bounds.
func (p Path) Visible(progress float64) Path {
	if math.IsNaN(progress) || progress <= 0 {
		return p[:0]
	}
	n := math.Floor(progress * float64(len(p)))
	if n >= float64(len(p)) {
		return p
	}
	return p[:int(n)]
}

// Tabulator caches the tabulated path of a linkage and refreshes it in full
// whenever the linkage changes.
type Tabulator struct {
	linkage    Linkage
	path       Path
	recomputes int
}

// NewTabulator tabulates l at the given resolution. The resolution is fixed for
// the lifetime of the tabulator.
func NewTabulator(l Linkage, resolution int) *Tabulator {
	return &Tabulator{
		linkage:    l,
		path:       Tabulate(l, resolution),
		recomputes: 1,
	}
}

// Update switches the tabulator to linkage l. The whole path is recomputed
// unless l is identical to the cached linkage. It reports whether a
// recomputation happened.
func (t *Tabulator) Update(l Linkage) bool {
	if sameLinkage(t.linkage, l) {
		return false
	}
	t.linkage = l
	t.path.Fill(l)
	t.recomputes++
	return true
}

// Linkage returns the linkage the current path was computed for.
func (t *Tabulator) Linkage() Linkage { return t.linkage }

// Path returns the cached path. Callers must not modify it.
func (t *Tabulator) Path() Path { return t.path }

// Resolution returns the fixed number of samples in the path.
func (t *Tabulator) Resolution() int { return len(t.path) }

// Recomputes returns how many times the path has been computed in full.
func (t *Tabulator) Recomputes() int { return t.recomputes }

// sameLinkage compares bit patterns so that repeated NaN inputs count as equal
// while 0 and -0 do not.
func sameLinkage(a, b Linkage) bool {
	return math.Float64bits(a.OA) == math.Float64bits(b.OA) &&
		math.Float64bits(a.AB) == math.Float64bits(b.AB) &&
		math.Float64bits(a.AMPerAB) == math.Float64bits(b.AMPerAB)
}
