// Plyr-voice is the voice-driven command assistant daemon for the plyr media
// player: it turns spoken or typed utterances into classified intents,
// resolves referenced tracks, executes the action against the player, and
// reports (optionally speaks) a human-readable reply.
//
// Usage:
//
//	plyr-voice [flags]
//	plyr-voice --config /path/to/plyr-voice.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/josemri/plyr-voice/docs"
	"github.com/josemri/plyr-voice/internal/config"
	"github.com/josemri/plyr-voice/internal/conversation"
	"github.com/josemri/plyr-voice/internal/dispatch"
	"github.com/josemri/plyr-voice/internal/gesture"
	"github.com/josemri/plyr-voice/internal/health"
	"github.com/josemri/plyr-voice/internal/intent"
	"github.com/josemri/plyr-voice/internal/lexicon"
	"github.com/josemri/plyr-voice/internal/message"
	"github.com/josemri/plyr-voice/internal/player"
	"github.com/josemri/plyr-voice/internal/session"
	"github.com/josemri/plyr-voice/internal/speech"
	"github.com/josemri/plyr-voice/internal/transport"
	httptransport "github.com/josemri/plyr-voice/internal/transport/http"
	mqtttransport "github.com/josemri/plyr-voice/internal/transport/mqtt"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/plyr-voice.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("plyr-voice %s\n", version)
		os.Exit(0)
	}

	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	config.SetupLogging(cfg.Logging)
	slog.Info("plyr-voice starting", "version", version)

	// Root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// String tables: trigger phrases and localized replies.
	table, err := lexicon.Load(cfg.Assistant.LexiconPath, cfg.Assistant.Locale)
	if err != nil {
		slog.Error("failed to load lexicon", "error", err)
		os.Exit(1)
	}

	// Playback collaborators. The remote controller requires a single
	// execution context, so every call is marshalled through the serial
	// executor.
	remote := player.NewRemoteController(cfg.Player.ControllerEndpoint)
	controller := player.NewSerial(remote)
	defer controller.Close()
	catalog := player.NewCatalogClient(cfg.Player.CatalogEndpoint)
	video := player.NewVideoClient(cfg.Player.VideoEndpoint)

	// Classifier: probe the neural backend once at startup; fall back to
	// rules only when the probe fails.
	rules := intent.NewRules(table, cfg.Assistant.Locale)
	var neural *intent.Neural
	if cfg.Classifier.Neural.Enabled {
		probe := intent.NewNeural(cfg.Classifier.Neural.Endpoint, cfg.Classifier.Neural.Model, cfg.Classifier.Neural.Timeout())
		if err := probe.Probe(ctx); err != nil {
			slog.Warn("neural classifier unavailable, using rule-based only", "error", err)
		} else {
			neural = probe
			slog.Info("neural classifier active",
				"endpoint", cfg.Classifier.Neural.Endpoint,
				"model", cfg.Classifier.Neural.Model)
		}
	}
	classifier := intent.NewClassifier(rules, neural)

	dispatcher := dispatch.New(controller, catalog, video, table)

	// Conversation store.
	var store conversation.Store
	switch cfg.Store.Backend {
	case "sqlite":
		store, err = conversation.NewSQLiteStore(cfg.Store.Path)
	default:
		store = conversation.NewFileStore(cfg.Store.Path)
	}
	if err != nil {
		slog.Error("failed to open conversation store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	log, err := conversation.NewLog(store)
	if err != nil {
		slog.Error("failed to load conversation history", "error", err)
		os.Exit(1)
	}
	slog.Info("conversation history loaded", "backend", cfg.Store.Backend, "messages", log.Len())

	// Speech services.
	var transcriber *speech.Transcriber
	if cfg.Speech.Transcription.Enabled {
		transcriber = speech.NewTranscriber(cfg.Speech.Transcription.Endpoint, cfg.Speech.Transcription.Model)
	}
	var output speech.OutputService
	if cfg.Speech.Output.Enabled {
		synth := speech.NewSynthesizer(cfg.Speech.Output.PiperEndpoint, cfg.Speech.Output.Voices)
		output = speech.NewSpeaker(synth, cfg.Speech.Output.PlayerCmd, cfg.Assistant.Locale)
	}
	var capture speech.CaptureService
	if cfg.Speech.Capture.Enabled {
		capture = speech.NewMicCapture(transcriber, cfg.Speech.Capture.RecordCmd)
	}

	pipeline := session.NewPipeline(classifier, dispatcher, log, transcriber, output, cfg.Assistant.Locale)
	sessions := session.NewController(pipeline, capture, output, cfg.Assistant.Locale)

	// Activation state machine: quick release starts a listening session,
	// a full hold asks the UI to open the conversation view.
	gestures := gesture.NewMachine(gesture.Config{
		ActivationThreshold: cfg.Gesture.ActivationThreshold,
		MaxPull:             cfg.Gesture.MaxPull,
		BaseResistance:      cfg.Gesture.BaseResistance,
		HoldDuration:        cfg.Gesture.HoldDuration(),
	})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-gestures.Events():
				switch ev {
				case gesture.EventStartListening:
					if err := sessions.Start(ctx, session.Callbacks{}); err != nil {
						slog.Warn("could not start voice session", "error", err)
					}
				case gesture.EventOpenConversation:
					slog.Info("conversation view requested")
				}
			}
		}
	}()

	handler := func(ctx context.Context, utt *message.Utterance) (*message.Result, error) {
		return pipeline.Run(ctx, utt), nil
	}

	// Transports.
	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port, sessions, pipeline.History, gestures))
	}
	if cfg.Transports.MQTT.Enabled {
		transports = append(transports, mqtttransport.New(cfg.Transports.MQTT))
	}
	if len(transports) == 0 {
		slog.Error("no transports enabled — enable at least one in config")
		os.Exit(1)
	}

	// Health server.
	healthServer := health.New(cfg.Server.HealthPort)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, handler); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("plyr-voice ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	sessions.Cancel()
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("plyr-voice stopped")
}
