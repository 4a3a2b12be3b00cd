package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync/atomic"
)

// Transcriber converts audio bytes to text via an OpenAI-compatible
// transcription endpoint (whisper.cpp server, faster-whisper, or the hosted
// API).
type Transcriber struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewTranscriber creates a transcription client. model may be empty for
// servers that ignore it.
func NewTranscriber(endpoint, model string) *Transcriber {
	return &Transcriber{
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{},
	}
}

// Transcribe posts the audio as multipart form data and returns the text.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, contentType, locale string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio"+extFromContentType(contentType))
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio: %w", err)
	}

	if t.model != "" {
		_ = writer.WriteField("model", t.model)
	}
	if locale != "" {
		_ = writer.WriteField("language", locale)
	}
	_ = writer.WriteField("response_format", "json")
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding transcription: %w", err)
	}

	slog.Debug("transcription complete", "text_length", len(result.Text))
	return strings.TrimSpace(result.Text), nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	default:
		return ".wav"
	}
}

// BufferCapture is a CaptureService over a pre-recorded audio buffer: it
// transcribes the whole buffer and delivers one final transcript. It stands
// in for MicCapture wherever the audio already exists in full, and in tests.
//
// A BufferCapture serves one attempt at a time.
type BufferCapture struct {
	transcriber *Transcriber
	audio       []byte
	contentType string

	cancelled atomic.Bool
}

// NewBufferCapture wraps an audio buffer as a capture attempt.
func NewBufferCapture(transcriber *Transcriber, audio []byte, contentType string) *BufferCapture {
	return &BufferCapture{
		transcriber: transcriber,
		audio:       audio,
		contentType: contentType,
	}
}

// Start transcribes the buffer on a background goroutine and reports through
// the listener.
func (b *BufferCapture) Start(ctx context.Context, locale string, listener CaptureListener) error {
	if len(b.audio) == 0 {
		return fmt.Errorf("buffer capture: empty audio")
	}
	b.cancelled.Store(false)

	go func() {
		listener.OnReady()

		text, err := b.transcriber.Transcribe(ctx, b.audio, b.contentType, locale)
		if b.cancelled.Load() {
			return
		}
		if err != nil {
			slog.Warn("buffer capture transcription failed", "error", err)
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

// Stop is a no-op: the whole buffer is always transcribed.
func (b *BufferCapture) Stop() {}

// Cancel suppresses any further listener callbacks for this attempt.
func (b *BufferCapture) Cancel() {
	b.cancelled.Store(true)
}
