// Package config handles loading and validating the plyr-voice configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the plyr-voice daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Assistant  AssistantConfig  `mapstructure:"assistant"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Player     PlayerConfig     `mapstructure:"player"`
	Store      StoreConfig      `mapstructure:"store"`
	Gesture    GestureConfig    `mapstructure:"gesture"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	MQTT MQTTConfig `mapstructure:"mqtt"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// MQTTConfig configures the MQTT transport.
type MQTTConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Broker     string `mapstructure:"broker"`
	Topic      string `mapstructure:"topic"`
	ReplyTopic string `mapstructure:"reply_topic"`
	ClientID   string `mapstructure:"client_id"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
}

// AssistantConfig holds locale and lexicon settings.
type AssistantConfig struct {
	// Locale is the default ISO-639-1 code for triggers and replies.
	Locale string `mapstructure:"locale"`

	// LexiconPath optionally overlays the embedded trigger/reply tables.
	LexiconPath string `mapstructure:"lexicon_path"`
}

// ClassifierConfig selects the classification strategy.
type ClassifierConfig struct {
	Neural NeuralConfig `mapstructure:"neural"`
}

// NeuralConfig configures the optional neural intent classifier.
type NeuralConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"` // OpenAI-compatible chat completions URL
	Model     string `mapstructure:"model"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
}

// Timeout returns the inference timeout as a duration.
func (n NeuralConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutMS) * time.Millisecond
}

// SpeechConfig configures transcription, live capture, and speech output.
type SpeechConfig struct {
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Capture       CaptureConfig       `mapstructure:"capture"`
	Output        OutputConfig        `mapstructure:"output"`
}

// CaptureConfig holds live microphone capture settings. Capture requires
// transcription to be enabled.
type CaptureConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	RecordCmd []string `mapstructure:"record_cmd"` // recorder command, WAV on stdout
}

// TranscriptionConfig holds whisper-compatible endpoint settings.
type TranscriptionConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// OutputConfig holds Piper TTS and playback settings.
type OutputConfig struct {
	Enabled       bool              `mapstructure:"enabled"`
	PiperEndpoint string            `mapstructure:"piper_endpoint"` // Wyoming TCP endpoint (host:port)
	Voices        map[string]string `mapstructure:"voices"`         // ISO-639-1 code -> Piper voice name
	PlayerCmd     []string          `mapstructure:"player_cmd"`     // playback command, WAV on stdin
}

// PlayerConfig points at the media player and resolution services.
type PlayerConfig struct {
	ControllerEndpoint string `mapstructure:"controller_endpoint"`
	CatalogEndpoint    string `mapstructure:"catalog_endpoint"`
	VideoEndpoint      string `mapstructure:"video_endpoint"`
}

// StoreConfig selects the conversation store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "sqlite"
	Path    string `mapstructure:"path"`
}

// GestureConfig tunes the activation state machine.
type GestureConfig struct {
	ActivationThreshold float64 `mapstructure:"activation_threshold"`
	MaxPull             float64 `mapstructure:"max_pull"`
	BaseResistance      float64 `mapstructure:"base_resistance"`
	HoldMS              int     `mapstructure:"hold_ms"`
}

// HoldDuration returns the hold dwell time as a duration.
func (g GestureConfig) HoldDuration() time.Duration {
	return time.Duration(g.HoldMS) * time.Millisecond
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./plyr-voice.yaml, ./configs/plyr-voice.yaml,
// /etc/plyr-voice/plyr-voice.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8091)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8090)
	v.SetDefault("transports.mqtt.enabled", false)
	v.SetDefault("transports.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("transports.mqtt.topic", "plyr-voice/utterance")
	v.SetDefault("transports.mqtt.reply_topic", "plyr-voice/reply")
	v.SetDefault("transports.mqtt.client_id", "plyr-voice")
	v.SetDefault("assistant.locale", "en")
	v.SetDefault("classifier.neural.enabled", false)
	v.SetDefault("classifier.neural.endpoint", "http://localhost:11434/v1/chat/completions")
	v.SetDefault("classifier.neural.model", "llama3.2:1b")
	v.SetDefault("classifier.neural.timeout_ms", 1500)
	v.SetDefault("speech.transcription.enabled", false)
	v.SetDefault("speech.transcription.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("speech.capture.enabled", false)
	v.SetDefault("speech.output.enabled", false)
	v.SetDefault("speech.output.piper_endpoint", "localhost:10200")
	v.SetDefault("speech.output.player_cmd", []string{"aplay", "-q"})
	v.SetDefault("player.controller_endpoint", "http://localhost:7090")
	v.SetDefault("player.catalog_endpoint", "http://localhost:7091")
	v.SetDefault("player.video_endpoint", "http://localhost:7092")
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "data/conversation.json")
	v.SetDefault("gesture.activation_threshold", 120.0)
	v.SetDefault("gesture.max_pull", 240.0)
	v.SetDefault("gesture.base_resistance", 0.8)
	v.SetDefault("gesture.hold_ms", 600)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("plyr-voice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/plyr-voice")
	}

	// Environment variables: PLYRVOICE_SERVER_HEALTH_PORT, PLYRVOICE_ASSISTANT_LOCALE, etc.
	v.SetEnvPrefix("PLYRVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${MQTT_PASSWORD}")
	cfg.Transports.MQTT.Username = resolveEnvRef(cfg.Transports.MQTT.Username)
	cfg.Transports.MQTT.Password = resolveEnvRef(cfg.Transports.MQTT.Password)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("store.backend must be \"file\" or \"sqlite\", got %q", c.Store.Backend)
	}
	if c.Speech.Capture.Enabled && !c.Speech.Transcription.Enabled {
		return fmt.Errorf("speech.capture.enabled requires speech.transcription.enabled")
	}
	if c.Gesture.ActivationThreshold > c.Gesture.MaxPull {
		return fmt.Errorf("gesture.activation_threshold (%v) exceeds gesture.max_pull (%v)",
			c.Gesture.ActivationThreshold, c.Gesture.MaxPull)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
