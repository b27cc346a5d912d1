package engine

import (
	"context"
	"time"

	"github.com/cxd309/linkage-engine/internal/monitoring"
	"github.com/cxd309/linkage-engine/internal/session"
	"github.com/cxd309/linkage-engine/internal/timeutil"
)

// Loop runs a session against a clock. A single goroutine (Run) owns the
// session: events, ticks and snapshot requests are processed one at a time in
// arrival order, so no state is ever touched concurrently.
type Loop struct {
	session   *session.Session
	clock     timeutil.Clock
	interval  time.Duration
	events    chan session.Event
	snapshots chan chan session.Frame
}

// NewLoop returns a loop delivering ticks every interval while autorun is on.
func NewLoop(s *session.Session, clock timeutil.Clock, interval time.Duration) *Loop {
	return &Loop{
		session:   s,
		clock:     clock,
		interval:  interval,
		events:    make(chan session.Event),
		snapshots: make(chan chan session.Frame),
	}
}

// Run processes events until ctx is done. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	var (
		ticker timeutil.Ticker
		ticks  <-chan time.Time
	)
	// The ticker only exists while autorun is on.
	syncTicker := func() {
		switch on := l.session.Autorun(); {
		case on && ticker == nil:
			ticker = l.clock.NewTicker(l.interval)
			ticks = ticker.C()
		case !on && ticker != nil:
			ticker.Stop()
			ticker, ticks = nil, nil
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	syncTicker()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			if err := l.session.Apply(ev, l.clock.Now()); err != nil {
				monitoring.Logf("linkage: dropping %s event: %v", ev.Kind, err)
			}
			syncTicker()
		case now := <-ticks:
			l.session.Tick(now)
		case reply := <-l.snapshots:
			reply <- l.session.Frame()
		}
	}
}

// Send delivers ev to the loop. It blocks until the loop accepts the event or
// ctx is done.
func (l *Loop) Send(ctx context.Context, ev session.Event) error {
	select {
	case l.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current frame as seen by the loop, after every event
// sent before the call has been processed.
func (l *Loop) Snapshot(ctx context.Context) (session.Frame, error) {
	reply := make(chan session.Frame, 1)
	select {
	case l.snapshots <- reply:
	case <-ctx.Done():
		return session.Frame{}, ctx.Err()
	}
	select {
	case f := <-reply:
		return f, nil
	case <-ctx.Done():
		return session.Frame{}, ctx.Err()
	}
}
