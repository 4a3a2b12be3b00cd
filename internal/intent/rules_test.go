package intent_test

import (
	"testing"

	"github.com/josemri/plyr-voice/internal/intent"
	"github.com/josemri/plyr-voice/internal/lexicon"
)

func newRules(t *testing.T) *intent.Rules {
	t.Helper()
	table, err := lexicon.Load("", "en")
	if err != nil {
		t.Fatalf("loading lexicon: %v", err)
	}
	return intent.NewRules(table, "en")
}

func TestRules_Classify(t *testing.T) {
	t.Parallel()
	rules := newRules(t)

	tests := []struct {
		name           string
		utterance      string
		wantIntent     string
		wantConfidence float64
		wantQuery      string
	}{
		{
			name:           "empty input",
			utterance:      "",
			wantIntent:     intent.IntentNone,
			wantConfidence: 1.0,
		},
		{
			name:           "whitespace only",
			utterance:      "   \t ",
			wantIntent:     intent.IntentNone,
			wantConfidence: 1.0,
		},
		{
			name:           "no trigger matches",
			utterance:      "tell me a joke",
			wantIntent:     intent.IntentUnknown,
			wantConfidence: 0,
		},
		{
			name:           "help",
			utterance:      "what can you do",
			wantIntent:     intent.IntentHelp,
			wantConfidence: 0.95,
		},
		{
			name:           "whats playing",
			utterance:      "hey, what's playing right now?",
			wantIntent:     intent.IntentWhatsPlaying,
			wantConfidence: 0.95,
		},
		{
			name:           "next beats play on priority",
			utterance:      "play the next song",
			wantIntent:     intent.IntentNext,
			wantConfidence: 0.95,
		},
		{
			name:           "previous",
			utterance:      "go back",
			wantIntent:     intent.IntentPrevious,
			wantConfidence: 0.95,
		},
		{
			name:           "pause case insensitive",
			utterance:      "PAUSE",
			wantIntent:     intent.IntentPause,
			wantConfidence: 0.95,
		},
		{
			name:           "repeat",
			utterance:      "repeat this one",
			wantIntent:     intent.IntentRepeat,
			wantConfidence: 0.95,
		},
		{
			name:           "resume maps to play",
			utterance:      "resume",
			wantIntent:     intent.IntentPlay,
			wantConfidence: 0.9,
		},
		{
			name:           "bare play is transport not search",
			utterance:      "play",
			wantIntent:     intent.IntentPlay,
			wantConfidence: 0.9,
		},
		{
			name:           "play with quoted title",
			utterance:      `play "Bohemian Rhapsody"`,
			wantIntent:     intent.IntentPlaySearch,
			wantConfidence: 0.9,
			wantQuery:      "bohemian rhapsody",
		},
		{
			name:           "play with bare title",
			utterance:      "play wish you were here",
			wantIntent:     intent.IntentPlaySearch,
			wantConfidence: 0.9,
			wantQuery:      "wish you were here",
		},
		{
			name:           "add to queue with title",
			utterance:      "add to queue hotel california",
			wantIntent:     intent.IntentAddQueue,
			wantConfidence: 0.9,
			wantQuery:      "hotel california",
		},
		{
			name:           "queue without title keeps intent",
			utterance:      "add to queue",
			wantIntent:     intent.IntentAddQueue,
			wantConfidence: 0.9,
		},
		{
			name:           "search with query",
			utterance:      "search for stairway to heaven",
			wantIntent:     intent.IntentSearch,
			wantConfidence: 0.95,
			wantQuery:      "stairway to heaven",
		},
		{
			name:           "search without query is weak",
			utterance:      "search",
			wantIntent:     intent.IntentSearch,
			wantConfidence: 0.6,
		},
		{
			name:           "settings",
			utterance:      "open settings please",
			wantIntent:     intent.IntentSettings,
			wantConfidence: 0.95,
		},
		{
			name:           "quoted title without any trigger",
			utterance:      `"Bohemian Rhapsody"`,
			wantIntent:     intent.IntentPlaySearch,
			wantConfidence: 0.9,
			wantQuery:      "bohemian rhapsody",
		},
		{
			name:           "add_queue wins over play_search on priority",
			utterance:      "queue up something to play later",
			wantIntent:     intent.IntentAddQueue,
			wantConfidence: 0.9,
			wantQuery:      "something to play later",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rules.Classify(tt.utterance)
			if got.Intent != tt.wantIntent {
				t.Errorf("Classify(%q).Intent = %q, want %q", tt.utterance, got.Intent, tt.wantIntent)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("Classify(%q).Confidence = %v, want %v", tt.utterance, got.Confidence, tt.wantConfidence)
			}
			if got.Query() != tt.wantQuery {
				t.Errorf("Classify(%q) query = %q, want %q", tt.utterance, got.Query(), tt.wantQuery)
			}
		})
	}
}

func TestRules_SpanishLocale(t *testing.T) {
	t.Parallel()

	table, err := lexicon.Load("", "en")
	if err != nil {
		t.Fatalf("loading lexicon: %v", err)
	}
	rules := intent.NewRules(table, "es")

	got := rules.Classify("pon bohemian rhapsody")
	if got.Intent != intent.IntentPlaySearch {
		t.Errorf("Intent = %q, want %q", got.Intent, intent.IntentPlaySearch)
	}
	if got.Query() != "bohemian rhapsody" {
		t.Errorf("query = %q, want bohemian rhapsody", got.Query())
	}

	if got := rules.Classify("pausa"); got.Intent != intent.IntentPause {
		t.Errorf("Intent = %q, want %q", got.Intent, intent.IntentPause)
	}
}

func TestValidTag(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{
		intent.IntentNone, intent.IntentUnknown, intent.IntentHelp,
		intent.IntentWhatsPlaying, intent.IntentPlay, intent.IntentPause,
		intent.IntentNext, intent.IntentPrevious, intent.IntentRepeat,
		intent.IntentAddQueue, intent.IntentPlaySearch, intent.IntentSearch,
		intent.IntentSettings,
	} {
		if !intent.ValidTag(tag) {
			t.Errorf("ValidTag(%q) = false, want true", tag)
		}
	}

	for _, tag := range []string{"", "resume", "PLAY", "dance"} {
		if intent.ValidTag(tag) {
			t.Errorf("ValidTag(%q) = true, want false", tag)
		}
	}
}
