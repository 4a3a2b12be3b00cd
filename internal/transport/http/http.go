// Package http implements the HTTP transport for plyr-voice.
//
// It exposes a REST API for utterance dispatch (typed text or raw audio),
// conversation history, live voice session control, and gesture telemetry
// from companion UIs. Swagger docs are served at /swagger/.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/josemri/plyr-voice/internal/conversation"
	"github.com/josemri/plyr-voice/internal/gesture"
	"github.com/josemri/plyr-voice/internal/message"
	"github.com/josemri/plyr-voice/internal/session"
	"github.com/josemri/plyr-voice/internal/speech"
	"github.com/josemri/plyr-voice/internal/transport"
)

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port     int
	server   *http.Server
	sessions *session.Controller // nil when no capture backend is configured
	history  func() []conversation.ChatMessage
	gestures *gesture.Machine
}

// New creates a new HTTP transport on the given port. sessions and gestures
// may be nil; the corresponding endpoints then return 503.
func New(port int, sessions *session.Controller, history func() []conversation.ChatMessage, gestures *gesture.Machine) *Transport {
	return &Transport{
		port:     port,
		sessions: sessions,
		history:  history,
		gestures: gestures,
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /utterance", func(w http.ResponseWriter, r *http.Request) {
		t.handleUtterance(w, r, handler)
	})
	mux.HandleFunc("GET /history", t.handleHistory)
	mux.HandleFunc("POST /session/start", t.handleSessionStart)
	mux.HandleFunc("POST /session/stop", t.handleSessionStop)
	mux.HandleFunc("POST /session/cancel", t.handleSessionCancel)
	mux.HandleFunc("GET /session/phase", t.handleSessionPhase)
	mux.HandleFunc("POST /gesture", t.handleGesture)

	// Swagger UI — serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleUtterance processes a POST /utterance request.
//
// @Summary     Dispatch a typed or spoken utterance
// @Description Accepts a JSON utterance (typed text or base64 audio) or raw audio bytes.
// @Description The utterance runs through the classify→dispatch pipeline and the reply is returned.
// @Tags        utterance
// @Accept      json
// @Accept      audio/wav
// @Accept      audio/ogg
// @Produce     json
// @Param       utterance  body  message.Utterance  true  "Utterance (JSON). For raw audio, POST the bytes directly with the appropriate Content-Type."
// @Param       X-PlyrVoice-Source  header  string  false  "Sender identifier (raw audio uploads)"
// @Param       X-PlyrVoice-Locale  header  string  false  "ISO-639-1 locale (raw audio uploads)"
// @Param       X-PlyrVoice-Speak   header  bool    false  "Speak the reply (raw audio uploads)"
// @Success     200  {object}  message.Result  "Classified intent and reply"
// @Failure     400  {string}  string  "Invalid request body or headers"
// @Failure     500  {string}  string  "Internal processing error"
// @Router      /utterance [post]
func (t *Transport) handleUtterance(w http.ResponseWriter, r *http.Request, handler transport.Handler) {
	var utt message.Utterance

	contentType := r.Header.Get("Content-Type")
	switch {
	case contentType == "application/json":
		if err := json.NewDecoder(r.Body).Decode(&utt); err != nil {
			http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
			return
		}
	default:
		// Treat body as raw audio; metadata comes from headers.
		audio, err := io.ReadAll(io.LimitReader(r.Body, 25<<20)) // 25 MB limit
		if err != nil {
			http.Error(w, "reading audio: "+err.Error(), http.StatusBadRequest)
			return
		}
		utt.Audio = audio
		utt.ContentType = contentType
		utt.Source = r.Header.Get("X-PlyrVoice-Source")
		utt.Locale = r.Header.Get("X-PlyrVoice-Locale")
		if speak := r.Header.Get("X-PlyrVoice-Speak"); speak != "" {
			utt.Speak, _ = strconv.ParseBool(speak)
		}
	}

	result, err := handler(r.Context(), &utt)
	if err != nil {
		slog.Error("utterance dispatch failed", "error", err)
		http.Error(w, "dispatch error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, result)
}

// handleHistory returns the conversation log.
//
// @Summary  Conversation history
// @Produce  json
// @Success  200  {array}  conversation.ChatMessage
// @Router   /history [get]
func (t *Transport) handleHistory(w http.ResponseWriter, _ *http.Request) {
	messages := t.history()
	if messages == nil {
		messages = []conversation.ChatMessage{}
	}
	writeJSON(w, messages)
}

// handleSessionStart starts a live voice session.
//
// @Summary  Start a voice session
// @Produce  json
// @Success  202  {object}  map[string]string
// @Failure  409  {string}  string  "A session is already active"
// @Failure  503  {string}  string  "No speech capture backend configured"
// @Router   /session/start [post]
func (t *Transport) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	if t.sessions == nil {
		http.Error(w, "voice sessions unavailable", http.StatusServiceUnavailable)
		return
	}

	// The session outlives this request; partials and the reply are
	// observable via /session/phase and /history.
	err := t.sessions.Start(context.WithoutCancel(r.Context()), session.Callbacks{
		OnPartial: func(text string) {
			slog.Debug("session partial", "text", text)
		},
		OnReply: func(result *message.Result) {
			slog.Info("session reply", "intent", result.Intent)
		},
		OnError: func(code speech.ErrorCode) {
			slog.Warn("session error", "code", code)
		},
	})
	switch err {
	case nil:
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, map[string]string{"phase": string(t.sessions.Phase())})
	case session.ErrSessionActive:
		http.Error(w, err.Error(), http.StatusConflict)
	case session.ErrCaptureUnavailable:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleSessionStop finalizes the current capture early.
//
// @Summary  Stop listening and process what was heard
// @Success  204
// @Router   /session/stop [post]
func (t *Transport) handleSessionStop(w http.ResponseWriter, _ *http.Request) {
	if t.sessions == nil {
		http.Error(w, "voice sessions unavailable", http.StatusServiceUnavailable)
		return
	}
	t.sessions.Stop()
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionCancel aborts the current session.
//
// @Summary  Cancel the active voice session
// @Success  204
// @Router   /session/cancel [post]
func (t *Transport) handleSessionCancel(w http.ResponseWriter, _ *http.Request) {
	if t.sessions == nil {
		http.Error(w, "voice sessions unavailable", http.StatusServiceUnavailable)
		return
	}
	t.sessions.Cancel()
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionPhase reports the session phase.
//
// @Summary  Current voice session phase
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /session/phase [get]
func (t *Transport) handleSessionPhase(w http.ResponseWriter, _ *http.Request) {
	phase := session.PhaseIdle
	if t.sessions != nil {
		phase = t.sessions.Phase()
	}
	writeJSON(w, map[string]string{"phase": string(phase)})
}

// gestureRequest is one pointer telemetry sample from a companion UI.
type gestureRequest struct {
	Phase string  `json:"phase"` // "start", "move", "release", "cancel"
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Delta float64 `json:"delta,omitempty"`
}

// handleGesture feeds pointer telemetry into the activation state machine.
//
// @Summary  Feed gesture telemetry
// @Accept   json
// @Produce  json
// @Param    sample  body  gestureRequest  true  "Gesture sample"
// @Success  200  {object}  map[string]any
// @Failure  400  {string}  string  "Unknown gesture phase"
// @Router   /gesture [post]
func (t *Transport) handleGesture(w http.ResponseWriter, r *http.Request) {
	if t.gestures == nil {
		http.Error(w, "gesture input unavailable", http.StatusServiceUnavailable)
		return
	}

	var req gestureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Phase {
	case "start":
		t.gestures.Start(req.X, req.Y)
	case "move":
		t.gestures.Move(req.Delta)
	case "release":
		t.gestures.Release()
	case "cancel":
		t.gestures.Cancel()
	default:
		http.Error(w, "unknown gesture phase: "+req.Phase, http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"state": string(t.gestures.State()),
		"pull":  t.gestures.Pull(),
	})
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
