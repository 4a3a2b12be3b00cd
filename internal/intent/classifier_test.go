package intent_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/josemri/plyr-voice/internal/intent"
	"github.com/josemri/plyr-voice/internal/lexicon"
)

// chatServer mimics an OpenAI-compatible chat completions endpoint that
// always answers with the given content string.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestNeural_Infer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{name: "bare label", content: "pause", want: "pause"},
		{name: "whitespace and case", content: "  Play_Search \n", want: "play_search"},
		{name: "quoted label", content: `"next"`, want: "next"},
		{name: "label prefix echo", content: "label: settings", want: "settings"},
		{name: "outside the set", content: "dance", wantErr: true},
		{name: "free-form prose", content: "The user wants to pause playback.", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := chatServer(t, tt.content)
			defer srv.Close()

			n := intent.NewNeural(srv.URL, "test-model", time.Second)
			got, err := n.Infer(context.Background(), "whatever")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Infer() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Infer() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Infer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNeural_OllamaResponseShape(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "repeat"})
	}))
	defer srv.Close()

	n := intent.NewNeural(srv.URL, "test-model", time.Second)
	got, err := n.Infer(context.Background(), "loop this")
	if err != nil {
		t.Fatalf("Infer() error = %v", err)
	}
	if got != "repeat" {
		t.Errorf("Infer() = %q, want repeat", got)
	}
}

func TestNeural_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := intent.NewNeural(srv.URL, "test-model", time.Second)
	if _, err := n.Infer(context.Background(), "pause"); err == nil {
		t.Error("expected error for 500 response")
	}
	if err := n.Probe(context.Background()); err == nil {
		t.Error("expected Probe to fail for 500 response")
	}
}

func TestClassifier_NeuralLabelWithRuleEntities(t *testing.T) {
	t.Parallel()

	srv := chatServer(t, "play_search")
	defer srv.Close()

	table, err := lexicon.Load("", "en")
	if err != nil {
		t.Fatal(err)
	}
	rules := intent.NewRules(table, "en")
	c := intent.NewClassifier(rules, intent.NewNeural(srv.URL, "m", time.Second))

	got := c.Classify(context.Background(), `play "Bohemian Rhapsody"`)
	if got.Intent != intent.IntentPlaySearch {
		t.Errorf("Intent = %q, want %q", got.Intent, intent.IntentPlaySearch)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Confidence)
	}
	if got.Query() != "bohemian rhapsody" {
		t.Errorf("query = %q, want bohemian rhapsody", got.Query())
	}
}

func TestClassifier_FallsBackToRules(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	table, err := lexicon.Load("", "en")
	if err != nil {
		t.Fatal(err)
	}
	rules := intent.NewRules(table, "en")
	c := intent.NewClassifier(rules, intent.NewNeural(srv.URL, "m", time.Second))

	got := c.Classify(context.Background(), "pause the music")
	if got.Intent != intent.IntentPause {
		t.Errorf("Intent = %q, want %q after fallback", got.Intent, intent.IntentPause)
	}
	if got.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want rule confidence 0.95", got.Confidence)
	}
	if calls.Load() == 0 {
		t.Error("neural endpoint was never tried")
	}
}

func TestClassifier_RulesOnly(t *testing.T) {
	t.Parallel()

	table, err := lexicon.Load("", "en")
	if err != nil {
		t.Fatal(err)
	}
	c := intent.NewClassifier(intent.NewRules(table, "en"), nil)

	if c.HasNeural() {
		t.Error("HasNeural() = true for nil neural")
	}
	if got := c.Classify(context.Background(), ""); got.Intent != intent.IntentNone || got.Confidence != 1.0 {
		t.Errorf("Classify(\"\") = %+v, want none/1.0", got)
	}
	if got := c.Classify(context.Background(), "next track"); got.Intent != intent.IntentNext {
		t.Errorf("Intent = %q, want next", got.Intent)
	}
}
