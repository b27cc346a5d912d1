// Package session holds the state of one interactive linkage session and
// applies user and scheduler events to it, one at a time.
//
// A Session composes the mechanism parameters and their tabulated path, the
// animation controller, and the validated entries that feed the parameters.
// Rendering reads a Frame, which carries everything needed to draw.
package session

import (
	"fmt"
	"time"

	"github.com/cxd309/linkage-engine/internal/animation"
	"github.com/cxd309/linkage-engine/internal/config"
	"github.com/cxd309/linkage-engine/internal/input"
	"github.com/cxd309/linkage-engine/internal/kinematics"
)

// Session is the application state. It is not safe for concurrent use.
type Session struct {
	tab       *kinematics.Tabulator
	anim      *animation.Controller
	tracePath bool

	oaField     *input.Field[float64]
	abField     *input.Field[float64]
	periodField *input.Field[time.Duration]
}

// New builds a session from cfg. now seeds the animation reference time.
func New(cfg *config.Config, now time.Time) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	l := cfg.Linkage()
	anim, err := animation.New(cfg.GetPeriod(), cfg.GetAutorun(), now)
	if err != nil {
		return nil, err
	}
	return &Session{
		tab:         kinematics.NewTabulator(l, cfg.GetResolution()),
		anim:        anim,
		tracePath:   cfg.GetTracePath(),
		oaField:     input.NewField(l.OA, input.Length),
		abField:     input.NewField(l.AB, input.Length),
		periodField: input.NewFieldText(input.FormatSeconds(cfg.GetPeriod()), input.Seconds),
	}, nil
}

// Linkage returns the current mechanism parameters.
func (s *Session) Linkage() kinematics.Linkage { return s.tab.Linkage() }

// Path returns the tabulated path of M for the current parameters.
func (s *Session) Path() kinematics.Path { return s.tab.Path() }

// Animation returns a snapshot of the animation state.
func (s *Session) Animation() animation.State { return s.anim.State() }

// Autorun reports whether the animation is running.
func (s *Session) Autorun() bool { return s.anim.Autorun() }

// Recomputes returns how many times the path was tabulated in full.
func (s *Session) Recomputes() int { return s.tab.Recomputes() }

// SetOA sets the crank length, shows it in the OA entry and retabulates the path.
func (s *Session) SetOA(oa float64) {
	s.oaField.Set(oa)
	s.setOA(oa)
}

// SetAB sets the rod length, shows it in the AB entry and retabulates the path.
func (s *Session) SetAB(ab float64) {
	s.abField.Set(ab)
	s.setAB(ab)
}

func (s *Session) setOA(oa float64) {
	l := s.tab.Linkage()
	l.OA = oa
	s.tab.Update(l)
}

func (s *Session) setAB(ab float64) {
	l := s.tab.Linkage()
	l.AB = ab
	s.tab.Update(l)
}

// SetAMPerAB sets the position of M along AB and retabulates the path.
func (s *Session) SetAMPerAB(r float64) {
	l := s.tab.Linkage()
	l.AMPerAB = r
	s.tab.Update(l)
}

// SetPeriod changes the animation period and shows it in the period entry.
func (s *Session) SetPeriod(d time.Duration) error {
	if err := s.anim.SetPeriod(d); err != nil {
		return err
	}
	s.periodField.Edit(input.FormatSeconds(d))
	return nil
}

// SetProgress overrides the animation progress.
func (s *Session) SetProgress(p float64) error { return s.anim.SetProgress(p) }

// SetAutorun starts or stops the animation.
func (s *Session) SetAutorun(on bool, now time.Time) { s.anim.SetAutorun(on, now) }

// SetTracePath shows or hides the trace of M.
func (s *Session) SetTracePath(on bool) { s.tracePath = on }

// Tick advances the animation to now.
func (s *Session) Tick(now time.Time) { s.anim.Tick(now) }

// EditOA updates the OA entry and, when it parses, the crank length.
func (s *Session) EditOA(text string) bool {
	v, ok := s.oaField.Edit(text)
	if ok {
		s.setOA(v)
	}
	return ok
}

// EditAB updates the AB entry and, when it parses, the rod length.
func (s *Session) EditAB(text string) bool {
	v, ok := s.abField.Edit(text)
	if ok {
		s.setAB(v)
	}
	return ok
}

// EditPeriod updates the period entry and, when it parses, the period.
func (s *Session) EditPeriod(text string) (bool, error) {
	d, ok := s.periodField.Edit(text)
	if !ok {
		return false, nil
	}
	return true, s.anim.SetPeriod(d)
}

// Apply processes a single event. Entry parse failures are not errors; they
// only mark the entry invalid. Rejected slider values are.
func (s *Session) Apply(ev Event, now time.Time) error {
	switch ev.Kind {
	case EventOA:
		s.EditOA(ev.Text)
	case EventAB:
		s.EditAB(ev.Text)
	case EventPeriod:
		if _, err := s.EditPeriod(ev.Text); err != nil {
			return fmt.Errorf("period: %w", err)
		}
	case EventAMPerAB:
		s.SetAMPerAB(ev.Value)
	case EventProgress:
		if err := s.SetProgress(ev.Value); err != nil {
			return fmt.Errorf("progress: %w", err)
		}
	case EventAutorun:
		s.SetAutorun(ev.Flag, now)
	case EventTracePath:
		s.SetTracePath(ev.Flag)
	case EventTick:
		s.Tick(now)
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}
