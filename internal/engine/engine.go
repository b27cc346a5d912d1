// Package engine drives a linkage session through time.
//
// A scripted run replays a list of timed events against simulated time. Ticks
// are generated at the configured framerate while autorun is on, the same way
// the interactive program only subscribes to frame ticks while animating. Each
// processed event or tick appends one row to the run log.
//
// Loop is the live counterpart, driven by a real (or mock) clock.
package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cxd309/linkage-engine/internal/config"
	"github.com/cxd309/linkage-engine/internal/session"
)

// Epoch is the instant simulated time starts from in scripted runs.
var Epoch = time.Unix(0, 0).UTC()

// MaxRunTime bounds the simulated duration of a scripted run.
const MaxRunTime = 24 * time.Hour

type timedEvent struct {
	at    time.Duration
	index int
	event session.Event
}

// Runner replays a script against a fresh session.
type Runner struct {
	meta     RunMeta
	session  *session.Session
	events   []timedEvent
	next     int
	end      time.Duration
	interval time.Duration
	curTime  time.Duration
}

// NewRunner validates input and builds the session for a scripted run.
// Events scheduled after run_time are dropped.
func NewRunner(input ScriptInput) (*Runner, error) {
	rt := input.Meta.RunTime
	if math.IsNaN(rt) || rt < 0 || rt > MaxRunTime.Seconds() {
		return nil, fmt.Errorf("run_time must be between 0 and %v seconds, got %v", MaxRunTime.Seconds(), rt)
	}
	meta := input.Meta
	if meta.SessionID == "" {
		meta.SessionID = uuid.NewString()
	}

	cfg := input.Config
	if meta.Framerate != 0 {
		if meta.Framerate < 0 {
			return nil, fmt.Errorf("framerate must be positive, got %d", meta.Framerate)
		}
		var c config.Config
		if cfg != nil {
			c = *cfg
		}
		fr := meta.Framerate
		c.Framerate = &fr
		cfg = &c
	}
	meta.Framerate = cfg.GetFramerate()

	s, err := session.New(cfg, Epoch)
	if err != nil {
		return nil, fmt.Errorf("building session: %w", err)
	}

	events := make([]timedEvent, 0, len(input.Events))
	for i, ev := range input.Events {
		if math.IsNaN(ev.At) || ev.At < 0 {
			return nil, fmt.Errorf("event %d (%s): invalid time %v", i, ev.Kind, ev.At)
		}
		if ev.At > rt {
			continue
		}
		events = append(events, timedEvent{at: seconds(ev.At), index: i, event: ev})
	}
	// Events keep their arrival order when they share a timestamp.
	sort.SliceStable(events, func(a, b int) bool { return events[a].at < events[b].at })

	return &Runner{
		meta:     meta,
		session:  s,
		events:   events,
		end:      seconds(rt),
		interval: cfg.FrameInterval(),
	}, nil
}

// Session returns the session driven by the runner.
func (r *Runner) Session() *session.Session { return r.session }

// Run executes the script until run_time and returns the log.
//
// Events due at or before a tick instant are applied before that tick. Ticks
// fall on multiples of the frame interval and are only delivered while
// autorun is on.
func (r *Runner) Run() (RunLog, error) {
	log := RunLog{Meta: r.meta}

	for ; r.curTime <= r.end; r.curTime += r.interval {
		if err := r.applyDue(r.curTime, &log); err != nil {
			return RunLog{}, err
		}
		if r.curTime > 0 && r.session.Autorun() {
			r.session.Tick(Epoch.Add(r.curTime))
			log.Output = append(log.Output, newRow(r.curTime, session.EventTick, r.session.Frame()))
		}
	}
	// Events between the last tick and run_time.
	if err := r.applyDue(r.end, &log); err != nil {
		return RunLog{}, err
	}

	log.Linkage = r.session.Linkage()
	log.Path = pathSamples(r.session.Path())
	return log, nil
}

// applyDue applies every pending event scheduled at or before limit.
func (r *Runner) applyDue(limit time.Duration, log *RunLog) error {
	for ; r.next < len(r.events) && r.events[r.next].at <= limit; r.next++ {
		te := r.events[r.next]
		if err := r.session.Apply(te.event, Epoch.Add(te.at)); err != nil {
			return fmt.Errorf("at t=%.3f: event %d: %w", te.at.Seconds(), te.index, err)
		}
		log.Output = append(log.Output, newRow(te.at, te.event.Kind, r.session.Frame()))
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// RunJSON is the entry point for the CLI and WASM targets. It accepts a
// JSON-encoded ScriptInput, runs it, and returns the JSON-encoded RunLog.
func RunJSON(jsonInput string) (string, error) {
	var input ScriptInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return "", fmt.Errorf("invalid input JSON: %w", err)
	}

	runner, err := NewRunner(input)
	if err != nil {
		return "", err
	}

	runLog, err := runner.Run()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(runLog)
	if err != nil {
		return "", fmt.Errorf("marshaling output: %w", err)
	}
	return string(out), nil
}
