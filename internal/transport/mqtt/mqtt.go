// Package mqtt implements the MQTT transport for plyr-voice.
//
// MQTT suits embedded remotes and home-automation bridges: the transport
// subscribes to an utterance topic and publishes every pipeline result to a
// reply topic.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/josemri/plyr-voice/internal/config"
	"github.com/josemri/plyr-voice/internal/message"
	"github.com/josemri/plyr-voice/internal/transport"
)

// Transport implements transport.Transport over MQTT.
type Transport struct {
	cfg    config.MQTTConfig
	client pahomqtt.Client
}

// New creates a new MQTT transport from config.
func New(cfg config.MQTTConfig) *Transport {
	return &Transport{cfg: cfg}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "mqtt" }

// Listen connects to the broker, subscribes to the utterance topic, and
// blocks until the context is cancelled.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	opts := pahomqtt.NewClientOptions().
		AddBroker(t.cfg.Broker).
		SetClientID(t.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOrderMatters(false)
	if t.cfg.Username != "" {
		opts.SetUsername(t.cfg.Username)
		opts.SetPassword(t.cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	})

	t.client = pahomqtt.NewClient(opts)
	if token := t.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}

	subscribe := func(_ pahomqtt.Client, msg pahomqtt.Message) {
		go t.handleMessage(ctx, msg, handler)
	}
	if token := t.client.Subscribe(t.cfg.Topic, 1, subscribe); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", t.cfg.Topic, token.Error())
	}

	slog.Info("mqtt transport listening", "broker", t.cfg.Broker, "topic", t.cfg.Topic)

	<-ctx.Done()
	return nil
}

func (t *Transport) handleMessage(ctx context.Context, msg pahomqtt.Message, handler transport.Handler) {
	var utt message.Utterance
	if err := json.Unmarshal(msg.Payload(), &utt); err != nil {
		// Non-JSON payloads are treated as bare utterance text.
		utt = message.Utterance{Text: string(msg.Payload())}
	}

	result, err := handler(ctx, &utt)
	if err != nil {
		slog.Error("mqtt dispatch failed", "error", err)
		result = &message.Result{UtteranceID: utt.ID, Error: err.Error()}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		slog.Error("mqtt marshalling result", "error", err)
		return
	}

	token := t.client.Publish(t.cfg.ReplyTopic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		slog.Warn("mqtt publish timed out", "topic", t.cfg.ReplyTopic)
		return
	}
	if err := token.Error(); err != nil {
		slog.Error("mqtt publish failed", "topic", t.cfg.ReplyTopic, "error", err)
	}
}

// Close disconnects from the MQTT broker, allowing in-flight publishes to
// drain.
func (t *Transport) Close() error {
	if t.client != nil && t.client.IsConnected() {
		t.client.Disconnect(250)
	}
	return nil
}
