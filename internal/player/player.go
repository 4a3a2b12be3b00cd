// Package player defines the external media collaborators the assistant
// consumes: the playback controller, the catalog search service, and the
// video lookup service. The assistant only depends on the interfaces here;
// HTTP-backed adapters for a remote player live in this package too.
package player

import (
	"context"
	"time"
)

// Track is what the assistant hands to the playback controller. Ownership
// transfers to the controller once passed in.
type Track struct {
	LocalID        string    `json:"local_id"`
	PlaylistID     string    `json:"playlist_id"`
	CatalogTrackID string    `json:"catalog_track_id,omitempty"`
	Name           string    `json:"name"`
	Artists        string    `json:"artists"`
	VideoID        string    `json:"video_id,omitempty"`
	AudioURL       string    `json:"audio_url,omitempty"`
	Position       int       `json:"position"`
	LastSyncTime   time.Time `json:"last_sync_time"`
}

// CatalogTrack is a canonical catalog search hit.
type CatalogTrack struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
}

// Controller is the media-playback transport surface. Implementations may be
// affine to a particular execution context — callers that cannot guarantee it
// should wrap the controller in a Serial executor.
type Controller interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	CycleRepeatMode(ctx context.Context) error

	// CurrentTrack returns the observable current track, or nil when
	// nothing is loaded.
	CurrentTrack(ctx context.Context) (*Track, error)

	Initialize(ctx context.Context) error
	SetPlaylist(ctx context.Context, tracks []Track, startIndex int) error

	// LoadTrack prepares a track for playback; false means the controller
	// could not load it.
	LoadTrack(ctx context.Context, t Track) (bool, error)

	Enqueue(ctx context.Context, t Track) error
}

// CatalogSearch resolves a free-text query to a canonical track.
type CatalogSearch interface {
	// SearchBestMatch returns the single best match, or nil when the
	// catalog has nothing for the query.
	SearchBestMatch(ctx context.Context, query string) (*CatalogTrack, error)
}

// VideoLookup resolves a "title + artists" string to a playable media ID.
type VideoLookup interface {
	// FindPlayableID returns "" (and no error) when nothing playable exists.
	FindPlayableID(ctx context.Context, query string) (string, error)
}
