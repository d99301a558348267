package gesture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/itohio/gotouch/pkg/calib"
	"github.com/itohio/gotouch/pkg/touch"
)

// DefaultPollInterval is the delay between engine ticks.
const DefaultPollInterval = 10 * time.Millisecond

// Poller yields raw samples. touch.Sampler implements it.
type Poller interface {
	Poll() (touch.RawSample, bool, error)
}

// penState tracks one contact between pen-down and pen-up.
type penState struct {
	down    bool
	downAt  time.Time
	downPos calib.Point
	hasLast bool
	lastAt  time.Time
	lastPos calib.Point
}

// Engine is a polling state machine turning samples into gestures.
type Engine struct {
	sampler  Poller
	mapper   *calib.Mapper
	registry *Registry

	thresholds   Thresholds
	pollInterval time.Duration

	mu  sync.Mutex
	pen penState
	now func() time.Time

	cbMu     sync.RWMutex
	contacts []func(p calib.Point)
}

// NewEngine creates an engine. A nil registry gets a fresh one.
func NewEngine(sampler Poller, mapper *calib.Mapper, registry *Registry, t Thresholds) *Engine {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Engine{
		sampler:      sampler,
		mapper:       mapper,
		registry:     registry,
		thresholds:   t,
		pollInterval: DefaultPollInterval,
		now:          time.Now,
	}
}

// Registry returns the registry events are dispatched to.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// SetNowFunc replaces the clock used to time contacts.
func (e *Engine) SetNowFunc(fn func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn == nil {
		fn = time.Now
	}
	e.now = fn
}

// SetPollInterval changes the delay between ticks in Run.
func (e *Engine) SetPollInterval(d time.Duration) {
	if d > 0 {
		e.pollInterval = d
	}
}

// OnContact adds a callback receiving every mapped sample while the pen is
// down.
func (e *Engine) OnContact(fn func(p calib.Point)) {
	e.cbMu.Lock()
	defer e.cbMu.Unlock()
	e.contacts = append(e.contacts, fn)
}

// PenDown reports whether a contact is in progress.
func (e *Engine) PenDown() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pen.down
}

// Reset drops any contact in progress without emitting a gesture.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pen = penState{}
}

// Tick polls once, advances the state machine and dispatches at most one
// gesture. The returned event has Kind None when nothing was emitted.
func (e *Engine) Tick() (Event, error) {
	raw, ok, err := e.sampler.Poll()
	if err != nil {
		return Event{}, fmt.Errorf("gesture poll: %w", err)
	}

	if ok {
		p := e.mapper.Map(raw)
		e.contact(p)
		e.notifyContact(p)
		return Event{}, nil
	}

	ev := e.release()
	if ev.Kind != None {
		e.registry.Dispatch(ev)
	}
	return ev, nil
}

// contact records a sample taken while the pen is down.
func (e *Engine) contact(p calib.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if !e.pen.down {
		e.pen = penState{down: true, downAt: now, downPos: p}
		return
	}
	e.pen.hasLast = true
	e.pen.lastAt = now
	e.pen.lastPos = p
}

// release ends the contact in progress and classifies it.
func (e *Engine) release() Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	pen := e.pen
	e.pen = penState{}
	if !pen.down || !pen.hasLast {
		return Event{}
	}

	kind := Classify(e.thresholds, pen.downPos, pen.lastPos, pen.lastAt.Sub(pen.downAt))
	return Event{Kind: kind, Point: pen.lastPos}
}

func (e *Engine) notifyContact(p calib.Point) {
	e.cbMu.RLock()
	callbacks := make([]func(calib.Point), len(e.contacts))
	copy(callbacks, e.contacts)
	e.cbMu.RUnlock()

	for _, fn := range callbacks {
		fn(p)
	}
}

// Run ticks every poll interval until ctx is done or the transport fails.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := e.Tick(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
