// Package render draws session frames with gonum/plot.
//
// The view is square and centred on O, scaled so the fully stretched linkage
// (OA + AB) fills 90% of the half-width, like the interactive canvas.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/cxd309/linkage-engine/internal/kinematics"
	"github.com/cxd309/linkage-engine/internal/session"
)

// ErrDegenerate is returned for frames whose geometry cannot be drawn.
var ErrDegenerate = errors.New("degenerate frame")

const (
	fillRatio   = 0.9
	strokeWidth = 1.5
	pointRadius = 3
)

// DefaultSize is the side length of saved images.
const DefaultSize = 6 * vg.Inch

var (
	schematicColor = color.Black
	traceColor     = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
)

// Plot builds a plot of f: axes through O, links OA and AB, the joints with
// their labels, and the trace of M when it is shown.
func Plot(f session.Frame) (*plot.Plot, error) {
	if f.Degenerate != "" {
		return nil, fmt.Errorf("%w: %s", ErrDegenerate, f.Degenerate)
	}
	extent := (f.Linkage.OA + f.Linkage.AB) / fillRatio
	if !(extent > 0) || math.IsInf(extent, 0) {
		return nil, fmt.Errorf("%w: extent %v", ErrDegenerate, extent)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("OA=%g AB=%g AM/AB=%g progress=%.3f",
		f.Linkage.OA, f.Linkage.AB, f.Linkage.AMPerAB, f.Progress)
	p.X.Min, p.X.Max = -extent, extent
	p.Y.Min, p.Y.Max = -extent, extent
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	o, a, b, m := f.Origin, f.Pose.A, f.Pose.B, f.Pose.M

	axes, err := polyline(color.Gray{Y: 0x99}, 1,
		kinematics.Point{X: -extent}, kinematics.Point{X: extent})
	if err != nil {
		return nil, err
	}
	yAxis, err := polyline(color.Gray{Y: 0x99}, 1,
		kinematics.Point{Y: -extent}, kinematics.Point{Y: extent})
	if err != nil {
		return nil, err
	}
	p.Add(axes, yAxis)

	if f.TracePath && len(f.Trace) > 0 {
		// The trace starts at O, as drawn by the interactive program.
		pts := append([]kinematics.Point{o}, f.Trace...)
		for _, seg := range finiteRuns(pts) {
			trace, err := polyline(traceColor, strokeWidth, seg...)
			if err != nil {
				return nil, fmt.Errorf("trace: %w", err)
			}
			p.Add(trace)
		}
	}

	links, err := polyline(schematicColor, strokeWidth, o, a, b)
	if err != nil {
		return nil, fmt.Errorf("links: %w", err)
	}
	p.Add(links)

	joints, err := plotter.NewScatter(xys(o, a, b, m))
	if err != nil {
		return nil, fmt.Errorf("joints: %w", err)
	}
	joints.GlyphStyle = draw.GlyphStyle{
		Color:  schematicColor,
		Radius: vg.Points(pointRadius),
		Shape:  draw.CircleGlyph{},
	}
	p.Add(joints)

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    xys(o, a, b, m),
		Labels: []string{"O", "A", "B", "M"},
	})
	if err != nil {
		return nil, fmt.Errorf("labels: %w", err)
	}
	p.Add(labels)

	return p, nil
}

// Save renders f to path. The image format follows the file extension
// (png, svg, pdf, ...). A non-positive size selects DefaultSize.
func Save(f session.Frame, path string, size vg.Length) error {
	p, err := Plot(f)
	if err != nil {
		return err
	}
	if size <= 0 {
		size = DefaultSize
	}
	if err := p.Save(size, size, filepath.Clean(path)); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func polyline(c color.Color, width float64, pts ...kinematics.Point) (*plotter.Line, error) {
	l, err := plotter.NewLine(xys(pts...))
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(width)
	return l, nil
}

// finiteRuns splits pts at samples with NaN or infinite coordinates, which the
// solver yields where rounding leaves no real solution. Runs shorter than two
// points draw nothing and are dropped.
func finiteRuns(pts []kinematics.Point) [][]kinematics.Point {
	var runs [][]kinematics.Point
	start := 0
	for i := 0; i <= len(pts); i++ {
		if i < len(pts) && pts[i].Finite() {
			continue
		}
		if i-start >= 2 {
			runs = append(runs, pts[start:i])
		}
		start = i + 1
	}
	return runs
}

func xys(pts ...kinematics.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return out
}
