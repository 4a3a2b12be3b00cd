// Package gesture converts a continuous pointer/drag signal into exactly one
// of two activation outcomes: open the conversation view (long hold past the
// threshold) or start a live listening session (quick release after crossing
// it). It is a pure debouncing/dwell-time policy — it knows nothing about
// intents or sessions.
//
// Activations are emitted as typed events on a channel consumed by exactly
// one owner, not published on a shared bus.
package gesture

import (
	"log/slog"
	"sync"
	"time"
)

// State is the machine's current phase.
type State string

const (
	StateIdle    State = "idle"
	StatePulling State = "pulling"
)

// Event is an activation outcome.
type Event string

const (
	// EventOpenConversation fires when the pull is held past the threshold
	// for the full hold duration.
	EventOpenConversation Event = "open_conversation"

	// EventStartListening fires when the pull crossed the threshold but was
	// released before the hold duration elapsed.
	EventStartListening Event = "start_listening"
)

// Config tunes the pull mechanics.
type Config struct {
	// ActivationThreshold is the accumulated pull distance that arms the
	// machine.
	ActivationThreshold float64

	// MaxPull clamps the accumulated pull.
	MaxPull float64

	// BaseResistance scales incoming deltas at zero displacement. The
	// effective factor falls off linearly to zero as the accumulated pull
	// approaches MaxPull.
	BaseResistance float64

	// HoldDuration is how long the threshold must stay exceeded before the
	// hold outcome fires.
	HoldDuration time.Duration

	// Exclusion, when non-nil, reports whether a gesture origin lies in a
	// reserved zone where drags must not start the machine.
	Exclusion func(x, y float64) bool
}

func (c Config) withDefaults() Config {
	if c.ActivationThreshold <= 0 {
		c.ActivationThreshold = 120
	}
	if c.MaxPull <= 0 {
		c.MaxPull = 240
	}
	if c.BaseResistance <= 0 {
		c.BaseResistance = 0.8
	}
	if c.HoldDuration <= 0 {
		c.HoldDuration = 600 * time.Millisecond
	}
	return c
}

// Machine is the activation state machine. Safe for use from one input
// goroutine plus the internal hold timer.
type Machine struct {
	cfg Config

	mu        sync.Mutex
	state     State
	pull      float64
	armed     bool
	holdTimer *time.Timer

	events chan Event

	// afterFunc is swapped out in tests for deterministic hold firing.
	afterFunc func(d time.Duration, fn func()) *time.Timer
}

// NewMachine creates a machine with the given config (zero values get
// sensible defaults).
func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:       cfg.withDefaults(),
		state:     StateIdle,
		events:    make(chan Event, 4),
		afterFunc: time.AfterFunc,
	}
}

// Events returns the activation event channel. Exactly one consumer should
// own it.
func (m *Machine) Events() <-chan Event {
	return m.events
}

// State returns the current phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pull returns the current damped pull distance, for rendering.
func (m *Machine) Pull() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pull
}

// Start begins tracking a gesture that originated at (x, y). Origins inside
// the exclusion zone are ignored.
func (m *Machine) Start(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle {
		return
	}
	if m.cfg.Exclusion != nil && m.cfg.Exclusion(x, y) {
		return
	}
	m.state = StatePulling
	m.pull = 0
	m.armed = false
}

// Move feeds a drag delta into the machine. Deltas are damped by the
// resistance factor and the accumulated pull is clamped to [0, MaxPull].
func (m *Machine) Move(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePulling {
		return
	}

	factor := m.cfg.BaseResistance * (1 - m.pull/m.cfg.MaxPull)
	if factor < 0 {
		factor = 0
	}
	m.pull += delta * factor
	if m.pull < 0 {
		m.pull = 0
	}
	if m.pull > m.cfg.MaxPull {
		m.pull = m.cfg.MaxPull
	}

	crossed := m.pull >= m.cfg.ActivationThreshold
	switch {
	case crossed && !m.armed:
		m.armed = true
		m.holdTimer = m.afterFunc(m.cfg.HoldDuration, m.holdElapsed)
	case !crossed && m.armed:
		// Dropped back below the threshold before the hold fired.
		m.armed = false
		m.stopHoldTimer()
	}
}

// Release ends the gesture. If the threshold was met but the hold timer has
// not fired yet, this is the quick-release outcome.
func (m *Machine) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePulling {
		return
	}
	if m.armed {
		m.stopHoldTimer()
		m.emit(EventStartListening)
	}
	m.reset()
}

// Cancel aborts the gesture unconditionally.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopHoldTimer()
	m.reset()
}

// holdElapsed runs on the timer goroutine when the hold duration passes.
func (m *Machine) holdElapsed() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A release or cancel may have won the race for the lock.
	if m.state != StatePulling || !m.armed {
		return
	}
	m.emit(EventOpenConversation)
	m.reset()
}

func (m *Machine) stopHoldTimer() {
	if m.holdTimer != nil {
		m.holdTimer.Stop()
		m.holdTimer = nil
	}
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.pull = 0
	m.armed = false
	m.holdTimer = nil
}

func (m *Machine) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		slog.Warn("activation event dropped, consumer is behind", "event", ev)
	}
}
