package session

import (
	"github.com/cxd309/linkage-engine/internal/input"
	"github.com/cxd309/linkage-engine/internal/kinematics"
)

// Fields holds the display state of the numeric entries.
type Fields struct {
	OA     input.View `json:"oa"`
	AB     input.View `json:"ab"`
	Period input.View `json:"period"`
}

// Frame is everything the rendering layer needs to draw one frame.
type Frame struct {
	Progress   float64            `json:"progress"`
	Autorun    bool               `json:"autorun"`
	TracePath  bool               `json:"trace_path"`
	Linkage    kinematics.Linkage `json:"linkage"`
	Origin     kinematics.Point   `json:"origin"`
	Pose       kinematics.Pose    `json:"pose"`
	Resolution int                `json:"resolution"`
	// Trace is a copy of the part of M's path covered so far. Nil while the
	// trace is hidden.
	Trace  kinematics.Path `json:"trace,omitempty"`
	Fields Fields          `json:"fields"`
	// Degenerate explains why the pose cannot be drawn, if it cannot.
	Degenerate string `json:"degenerate,omitempty"`
}

// Frame solves the mechanism at the current progress and collects the state to draw.
func (s *Session) Frame() Frame {
	l := s.tab.Linkage()
	progress := s.anim.Progress()
	pose := l.Solve(progress)

	f := Frame{
		Progress:   progress,
		Autorun:    s.anim.Autorun(),
		TracePath:  s.tracePath,
		Linkage:    l,
		Origin:     kinematics.Origin,
		Pose:       pose,
		Resolution: s.tab.Resolution(),
		Fields: Fields{
			OA:     s.oaField.View(),
			AB:     s.abField.View(),
			Period: s.periodField.View(),
		},
	}
	if s.tracePath {
		visible := s.tab.Path().Visible(progress)
		f.Trace = make(kinematics.Path, len(visible))
		copy(f.Trace, visible)
	}
	if err := l.Validate(); err != nil {
		f.Degenerate = err.Error()
	} else if !pose.Finite() {
		f.Degenerate = "no real solution at this progress"
	}
	return f
}
