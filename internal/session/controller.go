package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/josemri/plyr-voice/internal/message"
	"github.com/josemri/plyr-voice/internal/speech"
)

// Phase is the voice session lifecycle state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseListening  Phase = "listening"
	PhaseProcessing Phase = "processing"
	PhaseSpeaking   Phase = "speaking"
)

// ErrSessionActive is returned when Start is called while a session is
// already running. The caller must cancel the active session first;
// pre-empting would let stale capture callbacks race the new session.
var ErrSessionActive = errors.New("session: another voice session is active")

// ErrCaptureUnavailable is returned when no capture service is configured.
var ErrCaptureUnavailable = errors.New("session: speech capture unavailable")

// Callbacks surface session progress to the caller. All fields are optional.
type Callbacks struct {
	// OnPartial delivers interim transcripts for live display.
	OnPartial func(text string)

	// OnReply delivers the final pipeline result.
	OnReply func(result *message.Result)

	// OnError reports a capture failure. The session is already back to
	// Idle; the caller decides whether to show a transient indicator.
	OnError func(code speech.ErrorCode)
}

// Controller runs live voice sessions: it drives the capture service,
// streams partials, and finalizes the transcript through the Pipeline. At
// most one session is active at a time.
type Controller struct {
	pipeline *Pipeline
	capture  speech.CaptureService
	output   speech.OutputService
	locale   string

	mu      sync.Mutex
	phase   Phase
	current *attempt
}

// NewController creates a session controller. capture may be nil, in which
// case Start always fails with ErrCaptureUnavailable.
func NewController(pipeline *Pipeline, capture speech.CaptureService, output speech.OutputService, locale string) *Controller {
	return &Controller{
		pipeline: pipeline,
		capture:  capture,
		output:   output,
		locale:   locale,
		phase:    PhaseIdle,
	}
}

// Phase returns the current session phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Start begins a listening session. It fails with ErrSessionActive if one is
// already running.
func (c *Controller) Start(ctx context.Context, callbacks Callbacks) error {
	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}
	if c.capture == nil {
		c.mu.Unlock()
		return ErrCaptureUnavailable
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	a := &attempt{
		controller: c,
		ctx:        attemptCtx,
		cancel:     cancel,
		callbacks:  callbacks,
	}
	c.current = a
	c.phase = PhaseListening
	c.mu.Unlock()

	// A stale reply must never talk over the new session.
	if c.output != nil {
		c.output.Stop()
	}

	if err := c.capture.Start(attemptCtx, c.locale, a); err != nil {
		c.finish(a)
		cancel()
		return err
	}
	slog.Info("voice session started")
	return nil
}

// Stop asks the capture service to finalize from what was heard so far.
func (c *Controller) Stop() {
	c.mu.Lock()
	active := c.current != nil
	c.mu.Unlock()
	if active {
		c.capture.Stop()
	}
}

// Cancel aborts the session at any phase: capture callbacks for the current
// attempt are suppressed, in-flight speech output is stopped (not merely
// ignored), and the session returns to Idle.
func (c *Controller) Cancel() {
	c.mu.Lock()
	a := c.current
	c.current = nil
	c.phase = PhaseIdle
	c.mu.Unlock()

	if a != nil {
		a.cancelled.Store(true)
		a.cancel()
		c.capture.Cancel()
		slog.Info("voice session cancelled")
	}
	if c.output != nil {
		c.output.Stop()
	}
}

func (c *Controller) setPhase(a *attempt, phase Phase) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != a {
		return false
	}
	c.phase = phase
	return true
}

// finish resets to Idle if a is still the active attempt.
func (c *Controller) finish(a *attempt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == a {
		c.current = nil
		c.phase = PhaseIdle
	}
}

// attempt is one capture attempt; it implements speech.CaptureListener. A
// cancelled attempt delivers nothing further.
type attempt struct {
	controller *Controller
	ctx        context.Context
	cancel     context.CancelFunc
	callbacks  Callbacks
	cancelled  atomic.Bool
	partial    atomic.Value // string, for live display state
}

func (a *attempt) OnReady() {
	slog.Debug("speech capture ready")
}

func (a *attempt) OnPartial(text string) {
	if a.cancelled.Load() {
		return
	}
	a.partial.Store(text)
	if a.callbacks.OnPartial != nil {
		a.callbacks.OnPartial(text)
	}
}

func (a *attempt) OnResult(text string) {
	if a.cancelled.Load() {
		return
	}
	c := a.controller

	if !c.setPhase(a, PhaseProcessing) {
		return
	}

	result := c.pipeline.Run(a.ctx, &message.Utterance{
		Source: "voice",
		Text:   text,
		Locale: c.locale,
	})

	if a.cancelled.Load() {
		c.finish(a)
		return
	}

	if result.Error == "" && result.Reply != "" && c.output != nil {
		if c.setPhase(a, PhaseSpeaking) {
			if err := c.output.Speak(a.ctx, result.Reply); err != nil && a.ctx.Err() == nil {
				slog.Warn("speaking reply failed", "error", err)
			} else if a.ctx.Err() == nil {
				result.Spoken = true
			}
		}
	}

	c.finish(a)
	a.cancel()

	if a.callbacks.OnReply != nil && !a.cancelled.Load() {
		a.callbacks.OnReply(result)
	}
}

func (a *attempt) OnError(code speech.ErrorCode) {
	if a.cancelled.Load() {
		return
	}
	// Partial text is discarded; nothing is appended to the conversation.
	slog.Warn("speech capture error", "code", code)
	a.controller.finish(a)
	a.cancel()
	if a.callbacks.OnError != nil {
		a.callbacks.OnError(code)
	}
}
