// Package message defines the core data types flowing through the assistant pipeline.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Utterance represents one incoming request from any transport: either
// pre-typed text or raw audio that still needs transcription.
type Utterance struct {
	// ID is a unique identifier for this utterance (UUID).
	ID string `json:"id"`

	// Source identifies the sender (e.g., "phone-alice", "desktop").
	Source string `json:"source"`

	// Text is the typed or pre-transcribed input. Empty if Audio is set.
	Text string `json:"text,omitempty"`

	// Audio is the raw audio payload. Nil if the utterance is text-only.
	Audio []byte `json:"audio,omitempty"`

	// ContentType is the MIME type of the audio (e.g., "audio/wav", "audio/ogg").
	ContentType string `json:"content_type,omitempty"`

	// Locale selects the trigger lexicon and reply strings (ISO-639-1).
	// Empty means the configured default.
	Locale string `json:"locale,omitempty"`

	// Speak requests that the reply also be sent to the speech output service.
	Speak bool `json:"speak,omitempty"`

	// Timestamp is when the utterance was received.
	Timestamp time.Time `json:"timestamp"`
}

// HasAudio returns true if the utterance carries an audio payload.
func (u *Utterance) HasAudio() bool {
	return len(u.Audio) > 0
}

// Normalize fills in the ID and Timestamp if the caller left them blank.
func (u *Utterance) Normalize() {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now()
	}
}

// Result is the outcome of running an utterance through the pipeline.
type Result struct {
	// UtteranceID is the original utterance ID.
	UtteranceID string `json:"utterance_id"`

	// Transcript is the text the pipeline acted on (transcription output
	// for audio input, the input text otherwise).
	Transcript string `json:"transcript,omitempty"`

	// Intent is the classified intent tag (e.g., "play_search", "pause").
	Intent string `json:"intent"`

	// Confidence is the classifier's confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Entities holds extracted slots, e.g. {"query": "bohemian rhapsody"}.
	Entities map[string]string `json:"entities,omitempty"`

	// Reply is the human-readable assistant reply.
	Reply string `json:"reply"`

	// Spoken reports whether the reply was forwarded to speech output.
	Spoken bool `json:"spoken,omitempty"`

	// Error is set if processing failed before a reply could be produced
	// (e.g., transcription failure). The dispatcher itself never fails.
	Error string `json:"error,omitempty"`
}
