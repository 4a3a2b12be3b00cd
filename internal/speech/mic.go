package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
)

// MicCapture implements CaptureService with an external recorder command
// (arecord by default) piped into the whisper transcriber. The recorder runs
// until Stop signals it (or its own duration limit fires); the recorded WAV
// is then transcribed into a single final transcript.
//
// It cannot produce partial transcripts — batch transcription has no interim
// results — so OnPartial never fires on this backend.
type MicCapture struct {
	transcriber *Transcriber
	recordCmd   []string

	mu        sync.Mutex
	cmd       *exec.Cmd
	cancelled *atomic.Bool // current attempt's flag
}

// NewMicCapture creates a microphone capture service. recordCmd must write
// WAV to stdout; empty means a 15-second bounded arecord.
func NewMicCapture(transcriber *Transcriber, recordCmd []string) *MicCapture {
	if len(recordCmd) == 0 {
		recordCmd = []string{"arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "wav", "-d", "15", "-"}
	}
	return &MicCapture{transcriber: transcriber, recordCmd: recordCmd}
}

// Start begins recording and reports through the listener.
func (m *MicCapture) Start(ctx context.Context, locale string, listener CaptureListener) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cmd != nil {
		return fmt.Errorf("mic capture: already recording")
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, m.recordCmd[0], m.recordCmd[1:]...)
	cmd.Stdout = &out
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("mic capture: starting recorder: %w", err)
	}

	cancelled := &atomic.Bool{}
	m.cmd = cmd
	m.cancelled = cancelled

	go func() {
		listener.OnReady()

		err := cmd.Wait()
		m.mu.Lock()
		m.cmd = nil
		m.mu.Unlock()

		if cancelled.Load() {
			return
		}
		// A stop signal ends the recorder early; that is the normal path.
		if err != nil && out.Len() == 0 {
			slog.Warn("recorder failed", "error", err)
			listener.OnError(CodeInternal)
			return
		}

		text, terr := m.transcriber.Transcribe(ctx, out.Bytes(), "audio/wav", locale)
		if cancelled.Load() {
			return
		}
		if terr != nil {
			slog.Warn("mic transcription failed", "error", terr)
			listener.OnError(CodeNetwork)
			return
		}
		if text == "" {
			listener.OnError(CodeNoSpeech)
			return
		}
		listener.OnResult(text)
	}()

	return nil
}

// Stop signals the recorder to finalize; transcription follows.
func (m *MicCapture) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Signal(os.Interrupt)
	}
}

// Cancel abandons the attempt: the recorder is killed and no further
// callbacks fire.
func (m *MicCapture) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelled != nil {
		m.cancelled.Store(true)
	}
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
}
