package player

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// RemoteController drives a player daemon over its HTTP control API.
type RemoteController struct {
	base   string
	client *http.Client
}

// NewRemoteController creates a controller client for the given base URL
// (e.g. "http://localhost:7090").
func NewRemoteController(base string) *RemoteController {
	return &RemoteController{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{},
	}
}

func (c *RemoteController) post(ctx context.Context, path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("player %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("player %s: status %d: %s", path, resp.StatusCode, respBody)
	}
	return nil
}

func (c *RemoteController) Play(ctx context.Context) error {
	return c.post(ctx, "/player/play", nil)
}

func (c *RemoteController) Pause(ctx context.Context) error {
	return c.post(ctx, "/player/pause", nil)
}

func (c *RemoteController) Next(ctx context.Context) error {
	return c.post(ctx, "/player/next", nil)
}

func (c *RemoteController) Previous(ctx context.Context) error {
	return c.post(ctx, "/player/previous", nil)
}

func (c *RemoteController) CycleRepeatMode(ctx context.Context) error {
	return c.post(ctx, "/player/repeat", nil)
}

func (c *RemoteController) Initialize(ctx context.Context) error {
	return c.post(ctx, "/player/init", nil)
}

func (c *RemoteController) CurrentTrack(ctx context.Context) (*Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/player/current", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("player current: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("player current: status %d: %s", resp.StatusCode, respBody)
	}

	var track Track
	if err := json.NewDecoder(resp.Body).Decode(&track); err != nil {
		return nil, fmt.Errorf("decoding current track: %w", err)
	}
	return &track, nil
}

func (c *RemoteController) SetPlaylist(ctx context.Context, tracks []Track, startIndex int) error {
	return c.post(ctx, "/player/playlist", map[string]any{
		"tracks":      tracks,
		"start_index": startIndex,
	})
}

func (c *RemoteController) LoadTrack(ctx context.Context, t Track) (bool, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return false, fmt.Errorf("marshalling track: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/player/load", bytes.NewReader(data))
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("player load: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("player load: status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Loaded bool `json:"loaded"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding load response: %w", err)
	}
	return result.Loaded, nil
}

func (c *RemoteController) Enqueue(ctx context.Context, t Track) error {
	return c.post(ctx, "/player/queue", t)
}

// CatalogClient resolves queries against a catalog search HTTP service.
type CatalogClient struct {
	base   string
	client *http.Client
}

// NewCatalogClient creates a catalog search client for the given base URL.
func NewCatalogClient(base string) *CatalogClient {
	return &CatalogClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{},
	}
}

// SearchBestMatch asks the catalog for its single best hit. A 404 or empty
// body means no match, which is not an error.
func (c *CatalogClient) SearchBestMatch(ctx context.Context, query string) (*CatalogTrack, error) {
	reqURL := c.base + "/search/best?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("catalog search: status %d: %s", resp.StatusCode, respBody)
	}

	var track CatalogTrack
	if err := json.NewDecoder(resp.Body).Decode(&track); err != nil {
		return nil, fmt.Errorf("decoding catalog track: %w", err)
	}
	if track.ID == "" && track.Name == "" {
		return nil, nil
	}

	slog.Debug("catalog match", "query", query, "track", track.Name)
	return &track, nil
}

// VideoClient resolves title+artist strings to playable media IDs.
type VideoClient struct {
	base   string
	client *http.Client
}

// NewVideoClient creates a video lookup client for the given base URL.
func NewVideoClient(base string) *VideoClient {
	return &VideoClient{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{},
	}
}

// FindPlayableID returns the playable media identifier for the query, or ""
// when the service has nothing.
func (c *VideoClient) FindPlayableID(ctx context.Context, query string) (string, error) {
	reqURL := c.base + "/video/lookup?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("video lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("video lookup: status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		VideoID string `json:"video_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding video lookup: %w", err)
	}
	return result.VideoID, nil
}
