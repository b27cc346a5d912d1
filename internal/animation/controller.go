// Package animation advances the normalized progress of the linkage over time.
//
// The Controller is purely reactive. It never schedules anything itself; an
// external driver delivers ticks carrying a timestamp, typically at a fixed
// frame rate and only while autorun is on.
package animation

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidProgress is returned for a NaN manual progress.
	ErrInvalidProgress = errors.New("invalid progress")
	// ErrNegativePeriod is returned when a negative period is requested.
	ErrNegativePeriod = errors.New("negative period")
)

// maxProgress is the largest value progress may hold.
var maxProgress = math.Nextafter(1, 0)

// State is a point-in-time snapshot of a Controller.
type State struct {
	Progress float64       `json:"progress"`
	Autorun  bool          `json:"autorun"`
	Period   time.Duration `json:"period"`
	LastTick time.Time     `json:"last_tick"`
}

// Controller holds the animation state machine.
type Controller struct {
	progress float64
	autorun  bool
	period   time.Duration
	lastTick time.Time
}

// New returns a controller at progress 0. now seeds the reference tick time.
func New(period time.Duration, autorun bool, now time.Time) (*Controller, error) {
	if period < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativePeriod, period)
	}
	return &Controller{
		period:   period,
		autorun:  autorun,
		lastTick: now,
	}, nil
}

// Tick integrates the time elapsed since the previous tick into progress.
//
// Progress only moves while autorun is on and the period is non-zero; a zero
// period freezes the animation. The reference time is updated on every tick.
func (c *Controller) Tick(now time.Time) {
	if c.autorun && c.period > 0 {
		elapsed := now.Sub(c.lastTick).Seconds()
		c.progress = wrap(c.progress + elapsed/c.period.Seconds())
	}
	c.lastTick = now
}

// SetAutorun switches autorun and resets the reference tick time to now so the
// next tick does not integrate the time spent paused.
func (c *Controller) SetAutorun(on bool, now time.Time) {
	c.autorun = on
	c.lastTick = now
}

// SetProgress overrides progress directly, bypassing time integration. It is
// accepted whether or not autorun is on. Values at or above 1 are held just
// below 1 and negative values become 0.
func (c *Controller) SetProgress(p float64) error {
	if math.IsNaN(p) {
		return ErrInvalidProgress
	}
	switch {
	case p < 0:
		p = 0
	case p > maxProgress:
		p = maxProgress
	}
	c.progress = p
	return nil
}

// SetPeriod changes the duration of one full cycle for future ticks.
func (c *Controller) SetPeriod(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("%w: %v", ErrNegativePeriod, d)
	}
	c.period = d
	return nil
}

// Progress returns the current progress in [0,1).
func (c *Controller) Progress() float64 { return c.progress }

// Autorun reports whether the animation is running.
func (c *Controller) Autorun() bool { return c.autorun }

// Period returns the duration of one full cycle.
func (c *Controller) Period() time.Duration { return c.period }

// LastTick returns the reference time of the most recent tick or toggle.
func (c *Controller) LastTick() time.Time { return c.lastTick }

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	return State{
		Progress: c.progress,
		Autorun:  c.autorun,
		Period:   c.period,
		LastTick: c.lastTick,
	}
}

// wrap reduces p modulo 1 into [0,1).
func wrap(p float64) float64 {
	p = math.Mod(p, 1)
	if p < 0 {
		p++
	}
	if p >= 1 {
		// -tiny + 1 rounds up to 1.
		return 0
	}
	return p
}
