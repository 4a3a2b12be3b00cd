package speech

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
var defaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"es": "es_ES-mls_10246-low",
	"fr": "fr_FR-siwis-medium",
	"de": "de_DE-thorsten-medium",
	"it": "it_IT-riccardo-x_low",
	"pt": "pt_BR-faber-medium",
}

// Synthesizer is a client for a Piper TTS server speaking the Wyoming
// protocol over TCP. Each event on the wire is:
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
type Synthesizer struct {
	endpoint string
	voices   map[string]string
}

// NewSynthesizer creates a Piper client for the given host:port endpoint.
// voiceOverrides maps language codes to voice names on top of the defaults.
func NewSynthesizer(endpoint string, voiceOverrides map[string]string) *Synthesizer {
	voices := make(map[string]string, len(defaultVoices)+len(voiceOverrides))
	for lang, voice := range defaultVoices {
		voices[lang] = voice
	}
	for lang, voice := range voiceOverrides {
		voices[lang] = voice
	}

	endpoint = strings.TrimPrefix(endpoint, "tcp://")
	return &Synthesizer{endpoint: endpoint, voices: voices}
}

// Synthesize returns the text rendered as a WAV file in the voice configured
// for the locale (English voice as the fallback).
func (s *Synthesizer) Synthesize(ctx context.Context, text, locale string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	voice := s.voices[locale]
	if voice == "" {
		voice = s.voices["en"]
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	synth := wyomingEvent{
		Type: "synthesize",
		Data: map[string]any{
			"text":  text,
			"voice": map[string]any{"name": voice},
		},
	}
	if err := writeEvent(conn, synth, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	// Response stream: audio-start, audio-chunk*, audio-stop.
	var (
		reader     = bufio.NewReader(conn)
		pcm        bytes.Buffer
		sampleRate = 22050
		channels   = 1
		width      = 2
	)
	for {
		evt, payload, err := readEvent(reader)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if rate, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(rate)
			}
			if ch, ok := evt.Data["channels"].(float64); ok {
				channels = int(ch)
			}
			if w, ok := evt.Data["width"].(float64); ok {
				width = int(w)
			}

		case "audio-chunk":
			pcm.Write(payload)

		case "audio-stop":
			slog.Debug("piper synthesis complete", "pcm_bytes", pcm.Len(), "voice", voice)
			return pcmToWAV(pcm.Bytes(), sampleRate, channels, width), nil

		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return nil, fmt.Errorf("piper error: %s", msg)

		default:
			// Ignore unrelated event types.
		}
	}
}

type wyomingEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func writeEvent(w io.Writer, evt wyomingEvent, payload []byte) error {
	jsonBytes, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%d %d\n", len(jsonBytes), len(payload)); err != nil {
		return err
	}
	if _, err := w.Write(append(jsonBytes, '\n')); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func readEvent(r *bufio.Reader) (*wyomingEvent, []byte, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", header)
	}
	jsonLen, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("parsing json_length: %w", err)
	}
	payloadLen, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("parsing payload_length: %w", err)
	}

	jsonBuf := make([]byte, jsonLen+1) // +1 for the trailing newline
	if _, err := io.ReadFull(r, jsonBuf); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt wyomingEvent
	if err := json.Unmarshal(jsonBuf[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}

// pcmToWAV wraps raw little-endian PCM in a 44-byte WAV header.
func pcmToWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	buf := &bytes.Buffer{}
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
