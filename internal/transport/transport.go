// Package transport defines the interface for pluggable utterance transports.
//
// Each transport (HTTP, MQTT) accepts utterances from callers and hands them
// to the pipeline handler; the reply always goes back to the sender over the
// transport that received the utterance.
package transport

import (
	"context"

	"github.com/josemri/plyr-voice/internal/message"
)

// Handler processes an incoming utterance and returns the pipeline result.
// The daemon provides this handler to each transport.
type Handler func(ctx context.Context, utt *message.Utterance) (*message.Result, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "mqtt").
	Name() string

	// Listen starts accepting utterances and dispatches them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
