package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Neural classifies utterances with an OpenAI-compatible chat completions
// endpoint (Ollama, vLLM, llama.cpp server). The model is asked for a bare
// label out of the closed intent set; anything else is an inference error and
// the caller falls back to the rule-based path.
type Neural struct {
	endpoint string
	model    string
	timeout  time.Duration
	client   *http.Client
}

// NewNeural creates a neural classifier client. timeout bounds every
// inference attempt so a slow model degrades to rules instead of blocking.
func NewNeural(endpoint, model string, timeout time.Duration) *Neural {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Neural{
		endpoint: endpoint,
		model:    model,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

// Probe checks at startup whether the inference endpoint is reachable and
// produces a usable label. A non-nil error means the composite classifier
// should be built without the neural path.
func (n *Neural) Probe(ctx context.Context) error {
	label, err := n.Infer(ctx, "pause the music")
	if err != nil {
		return fmt.Errorf("neural probe: %w", err)
	}
	slog.Debug("neural probe succeeded", "label", label)
	return nil
}

const systemPrompt = `You are an intent classifier for a music player.
Reply with exactly one label from this list and nothing else:
none, unknown, help, whats_playing, play, pause, next, previous, repeat, add_queue, play_search, search, settings`

// Infer asks the model for an intent label. The returned label is guaranteed
// to belong to the closed intent set.
func (n *Neural) Infer(ctx context.Context, utterance string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	reqBody := map[string]any{
		"model": n.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": utterance},
		},
		"temperature": 0.0,
		"stream":      false,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("inference failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading inference response: %w", err)
	}

	label := normalizeLabel(extractContent(respData))
	if !ValidTag(label) {
		return "", fmt.Errorf("model returned label outside the intent set: %.60q", label)
	}
	return label, nil
}

// extractContent pulls the assistant message out of an OpenAI-compatible or
// Ollama response body.
func extractContent(data []byte) string {
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return string(data)
}

func normalizeLabel(content string) string {
	label := strings.ToLower(strings.TrimSpace(content))
	label = strings.Trim(label, `"'.`)
	// Some models echo "label: play" despite instructions.
	if idx := strings.LastIndexByte(label, ':'); idx >= 0 {
		label = strings.TrimSpace(label[idx+1:])
	}
	return label
}
