package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// Speaker implements OutputService by synthesizing with Piper and piping the
// WAV into an external playback command (e.g. "aplay -q"). Stop kills the
// playback process, which is our flush: a cancelled session is never talked
// over by a stale reply.
type Speaker struct {
	synth  *Synthesizer
	cmd    []string
	locale string

	mu      sync.Mutex
	current *exec.Cmd
}

// NewSpeaker creates a speaker. cmd is the playback command and its
// arguments; the WAV is written to its stdin.
func NewSpeaker(synth *Synthesizer, cmd []string, locale string) *Speaker {
	if len(cmd) == 0 {
		cmd = []string{"aplay", "-q"}
	}
	return &Speaker{synth: synth, cmd: cmd, locale: locale}
}

// Speak synthesizes the text and blocks until playback finishes or is
// stopped. A stop (or context cancellation) is not reported as an error.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	wav, err := s.synth.Synthesize(ctx, text, s.locale)
	if err != nil {
		return fmt.Errorf("synthesizing speech: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.cmd[0], s.cmd[1:]...)
	cmd.Stdin = bytes.NewReader(wav)

	s.mu.Lock()
	if s.current != nil {
		// A previous Speak is still running; callers are expected to Stop
		// first, but never overlap two playback processes.
		s.mu.Unlock()
		return errors.New("speech output already in progress")
	}
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("starting playback command: %w", err)
	}
	s.current = cmd
	s.mu.Unlock()

	err = cmd.Wait()

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ProcessState != nil && !exitErr.ProcessState.Exited() {
			// Killed by Stop; treat as a clean interrupt.
			slog.Debug("speech playback interrupted")
			return nil
		}
		return fmt.Errorf("playback command: %w", err)
	}
	return nil
}

// Stop interrupts any in-progress playback immediately.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Process != nil {
		_ = s.current.Process.Kill()
	}
}

// IsSpeaking reports whether a playback process is running.
func (s *Speaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}
