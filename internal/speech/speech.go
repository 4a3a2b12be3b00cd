// Package speech defines the capture (speech-to-text) and output
// (text-to-speech) services the assistant consumes, plus adapters: a
// whisper-compatible transcription client, a buffer-backed capture service,
// and a Piper/Wyoming speaker.
package speech

import "context"

// ErrorCode identifies capture failures surfaced to the session.
type ErrorCode string

const (
	CodePermissionDenied ErrorCode = "permission_denied"
	CodeNoSpeech         ErrorCode = "no_speech"
	CodeNetwork          ErrorCode = "network"
	CodeInternal         ErrorCode = "internal"
)

// CaptureListener receives capture callbacks. OnPartial may fire any number
// of times before exactly one of OnResult or OnError ends the capture.
type CaptureListener interface {
	// OnReady fires when the capture service is listening.
	OnReady()

	// OnPartial delivers an interim transcript for live display.
	OnPartial(text string)

	// OnResult delivers the final transcript and ends the capture.
	OnResult(text string)

	// OnError ends the capture with a failure code.
	OnError(code ErrorCode)
}

// CaptureService produces transcripts from live audio.
type CaptureService interface {
	// Start begins a capture attempt for the given locale. It returns an
	// error only when the capture cannot begin at all (e.g. no permission);
	// everything after that arrives through the listener.
	Start(ctx context.Context, locale string, listener CaptureListener) error

	// Stop requests a final transcript from what was heard so far.
	Stop()

	// Cancel abandons the capture. No further listener callbacks may be
	// delivered for the current attempt after Cancel returns.
	Cancel()
}

// OutputService speaks text back to the user.
type OutputService interface {
	// Speak synthesizes and plays the text. It blocks until playback ends,
	// is stopped, or the context is done.
	Speak(ctx context.Context, text string) error

	// Stop interrupts any in-progress speech and flushes pending audio.
	Stop()

	// IsSpeaking reports whether speech output is in flight.
	IsSpeaking() bool
}
