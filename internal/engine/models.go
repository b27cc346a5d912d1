package engine

import (
	"time"

	"github.com/cxd309/linkage-engine/internal/config"
	"github.com/cxd309/linkage-engine/internal/input"
	"github.com/cxd309/linkage-engine/internal/kinematics"
	"github.com/cxd309/linkage-engine/internal/session"
)

// RunMeta holds the identity and timing parameters of a scripted run.
type RunMeta struct {
	SessionID string  `json:"session_id"` // generated when empty
	RunTime   float64 `json:"run_time"`   // seconds
	// Framerate overrides the config framerate when set. The run log records
	// the rate actually used.
	Framerate int `json:"framerate,omitempty"`
}

// ScriptInput is the JSON-serialisable input to a scripted run.
type ScriptInput struct {
	Meta   RunMeta         `json:"run_meta"`
	Config *config.Config  `json:"config,omitempty"`
	Events []session.Event `json:"events"`
}

// FrameLogRow is the session state after one processed event or tick.
type FrameLogRow struct {
	Timestamp  float64           `json:"timestamp"` // seconds
	Event      session.EventKind `json:"event"`
	Progress   float64           `json:"progress"`
	Autorun    bool              `json:"autorun"`
	Pose       *kinematics.Pose  `json:"pose"`              // nil when the pose has no real solution
	Traced     int               `json:"traced"`            // trace points drawn, 0 while hidden
	Invalid    []string          `json:"invalid,omitempty"` // entries showing the error style
	Degenerate string            `json:"degenerate,omitempty"`
}

// RunLog is the complete output of a scripted run.
type RunLog struct {
	Meta    RunMeta             `json:"run_meta"`
	Linkage kinematics.Linkage  `json:"linkage"` // parameters at the end of the run
	Path    []*kinematics.Point `json:"path"`    // tabulated path at the end of the run, null where unsolved
	Output  []FrameLogRow       `json:"output"`
}

func newRow(ts time.Duration, kind session.EventKind, f session.Frame) FrameLogRow {
	row := FrameLogRow{
		Timestamp:  ts.Seconds(),
		Event:      kind,
		Progress:   f.Progress,
		Autorun:    f.Autorun,
		Traced:     len(f.Trace),
		Degenerate: f.Degenerate,
	}
	if f.Pose.Finite() {
		pose := f.Pose
		row.Pose = &pose
	}
	entries := []struct {
		name string
		view input.View
	}{
		{"oa", f.Fields.OA},
		{"ab", f.Fields.AB},
		{"period", f.Fields.Period},
	}
	for _, e := range entries {
		if !e.view.Valid {
			row.Invalid = append(row.Invalid, e.name)
		}
	}
	return row
}

// pathSamples copies p for the run log. Samples without a real solution are
// left nil since JSON has no encoding for NaN.
func pathSamples(p kinematics.Path) []*kinematics.Point {
	out := make([]*kinematics.Point, len(p))
	for i, pt := range p {
		pt := pt // per-iteration copy (go 1.21 loop variable semantics)
		if pt.Finite() {
			out[i] = &pt
		}
	}
	return out
}
