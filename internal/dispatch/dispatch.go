// Package dispatch maps a classified intent to actions against the media
// playback controller and the catalog/video lookup services, and produces a
// human-readable reply.
//
// Perform is total from the caller's perspective: resolution misses become
// localized "no results" replies, and any controller or service failure is
// collapsed to one generic localized error string. Retries, if any, belong to
// the services themselves.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josemri/plyr-voice/internal/intent"
	"github.com/josemri/plyr-voice/internal/lexicon"
	"github.com/josemri/plyr-voice/internal/player"
)

// voicePlaylistID marks tracks the assistant injected, as opposed to tracks
// from a user playlist.
const voicePlaylistID = "voice"

// helpOrder is the order commands are listed in the help reply.
var helpOrder = []string{
	intent.IntentWhatsPlaying,
	intent.IntentPlaySearch,
	intent.IntentAddQueue,
	intent.IntentNext,
	intent.IntentPrevious,
	intent.IntentPause,
	"resume",
	intent.IntentRepeat,
	intent.IntentSearch,
	intent.IntentSettings,
}

// Dispatcher executes intents against the playback collaborators.
type Dispatcher struct {
	controller player.Controller
	catalog    player.CatalogSearch
	video      player.VideoLookup
	table      *lexicon.Table
}

// New creates a Dispatcher. The controller is expected to already be wrapped
// in whatever execution-context marshalling it requires (see player.Serial).
func New(controller player.Controller, catalog player.CatalogSearch, video player.VideoLookup, table *lexicon.Table) *Dispatcher {
	return &Dispatcher{
		controller: controller,
		catalog:    catalog,
		video:      video,
		table:      table,
	}
}

// Perform executes the intent and returns the reply. It never fails and never
// panics outward.
func (d *Dispatcher) Perform(ctx context.Context, res intent.Result, locale string) (reply string) {
	start := time.Now()
	logger := slog.With("intent", res.Intent, "confidence", res.Confidence)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("dispatch panicked", "panic", r)
			reply = d.table.Reply(locale, "error_generic")
		}
	}()

	reply, err := d.perform(ctx, res, locale)
	if err != nil {
		logger.Error("dispatch failed", "error", err)
		return d.table.Reply(locale, "error_generic")
	}

	logger.Debug("dispatch complete", "duration", time.Since(start))
	return reply
}

func (d *Dispatcher) perform(ctx context.Context, res intent.Result, locale string) (string, error) {
	switch res.Intent {
	case intent.IntentHelp:
		return d.helpReply(locale), nil

	case intent.IntentWhatsPlaying:
		return d.whatsPlaying(ctx, locale)

	case intent.IntentPlay:
		if err := d.controller.Play(ctx); err != nil {
			return "", err
		}
		return d.table.Reply(locale, "confirm.play"), nil

	case intent.IntentPause:
		if err := d.controller.Pause(ctx); err != nil {
			return "", err
		}
		return d.table.Reply(locale, "confirm.pause"), nil

	case intent.IntentNext:
		if err := d.controller.Next(ctx); err != nil {
			return "", err
		}
		return d.table.Reply(locale, "confirm.next"), nil

	case intent.IntentPrevious:
		if err := d.controller.Previous(ctx); err != nil {
			return "", err
		}
		return d.table.Reply(locale, "confirm.previous"), nil

	case intent.IntentRepeat:
		if err := d.controller.CycleRepeatMode(ctx); err != nil {
			return "", err
		}
		return d.table.Reply(locale, "confirm.repeat"), nil

	case intent.IntentSettings:
		// Settings navigation is a UI concern; no controller action here.
		return d.table.Reply(locale, "open_settings"), nil

	case intent.IntentPlaySearch:
		return d.playSearch(ctx, res.Query(), locale)

	case intent.IntentAddQueue:
		return d.addQueue(ctx, res.Query(), locale)

	case intent.IntentSearch:
		return d.search(ctx, res.Query(), locale)

	default:
		return d.table.Reply(locale, "unknown"), nil
	}
}

func (d *Dispatcher) helpReply(locale string) string {
	var sb strings.Builder
	sb.WriteString(d.table.Reply(locale, "help.header"))
	for _, cat := range helpOrder {
		sb.WriteString("\n")
		sb.WriteString(d.table.Reply(locale, "help."+cat))
	}
	return sb.String()
}

func (d *Dispatcher) whatsPlaying(ctx context.Context, locale string) (string, error) {
	current, err := d.controller.CurrentTrack(ctx)
	if err != nil {
		return "", err
	}
	if current == nil {
		return d.table.Reply(locale, "nothing_playing"), nil
	}

	artists := current.Artists
	if strings.TrimSpace(artists) == "" {
		artists = d.table.Reply(locale, "unknown_artist")
	}
	return d.table.Reply(locale, "current_track", current.Name, artists), nil
}

// resolved is the outcome of turning a query into a playable track.
type resolved struct {
	track   player.Track
	artists string // "" when the catalog had no artist information
}

// resolve runs the two-step resolution: catalog search for a canonical
// title+artists, then video lookup for a playable ID. A nil result with a nil
// error means nothing playable was found.
func (d *Dispatcher) resolve(ctx context.Context, query string) (*resolved, error) {
	catalogTrack, err := d.catalog.SearchBestMatch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	name := query
	artists := ""
	catalogID := ""
	combined := query
	if catalogTrack != nil {
		name = catalogTrack.Name
		artists = strings.TrimSpace(strings.Join(catalogTrack.Artists, ", "))
		catalogID = catalogTrack.ID
		combined = strings.TrimSpace(name + " " + artists)
	}

	videoID, err := d.video.FindPlayableID(ctx, combined)
	if err != nil {
		return nil, fmt.Errorf("video lookup: %w", err)
	}
	if videoID == "" {
		return nil, nil
	}

	return &resolved{
		track: player.Track{
			LocalID:        uuid.NewString(),
			PlaylistID:     voicePlaylistID,
			CatalogTrackID: catalogID,
			Name:           name,
			Artists:        artists,
			VideoID:        videoID,
			Position:       0,
			LastSyncTime:   time.Now(),
		},
		artists: artists,
	}, nil
}

func (d *Dispatcher) playSearch(ctx context.Context, query, locale string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return d.table.Reply(locale, "prompt.play"), nil
	}

	found, err := d.resolve(ctx, query)
	if err != nil {
		return "", err
	}
	if found == nil {
		return d.table.Reply(locale, "no_results", query), nil
	}

	if err := d.controller.Initialize(ctx); err != nil {
		return "", err
	}
	if err := d.controller.SetPlaylist(ctx, []player.Track{found.track}, 0); err != nil {
		return "", err
	}
	loaded, err := d.controller.LoadTrack(ctx, found.track)
	if err != nil {
		return "", err
	}
	if !loaded {
		return "", fmt.Errorf("controller refused to load track %q", found.track.Name)
	}

	if found.artists == "" {
		return d.table.Reply(locale, "now_playing_no_artist", found.track.Name), nil
	}
	return d.table.Reply(locale, "now_playing", found.track.Name, found.artists), nil
}

func (d *Dispatcher) addQueue(ctx context.Context, query, locale string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return d.table.Reply(locale, "prompt.queue"), nil
	}

	found, err := d.resolve(ctx, query)
	if err != nil {
		return "", err
	}
	if found == nil {
		return d.table.Reply(locale, "no_results", query), nil
	}

	if err := d.controller.Enqueue(ctx, found.track); err != nil {
		return "", err
	}

	if found.artists == "" {
		return d.table.Reply(locale, "added_queue_no_artist", found.track.Name), nil
	}
	return d.table.Reply(locale, "added_queue", found.track.Name, found.artists), nil
}

// search resolves via the catalog only: no video lookup, no playback side
// effect.
func (d *Dispatcher) search(ctx context.Context, query, locale string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return d.table.Reply(locale, "prompt.search"), nil
	}

	catalogTrack, err := d.catalog.SearchBestMatch(ctx, query)
	if err != nil {
		return "", fmt.Errorf("catalog search: %w", err)
	}
	if catalogTrack == nil {
		return d.table.Reply(locale, "no_results", query), nil
	}

	artists := strings.TrimSpace(strings.Join(catalogTrack.Artists, ", "))
	if artists == "" {
		artists = d.table.Reply(locale, "unknown_artist")
	}
	return d.table.Reply(locale, "search_found", catalogTrack.Name, artists), nil
}
