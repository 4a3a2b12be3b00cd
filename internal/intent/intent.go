// Package intent turns a free-form utterance into a classified intent with
// extracted entities. Two strategies exist: a rule-based classifier driven by
// the trigger lexicon, and an optional neural classifier backed by an HTTP
// inference endpoint. The composite Classifier tries neural first and falls
// back to rules; both are total — classification never fails.
package intent

// Intent tags form a closed set. Transports and the dispatcher switch on
// these values.
const (
	IntentNone         = "none"
	IntentUnknown      = "unknown"
	IntentHelp         = "help"
	IntentWhatsPlaying = "whats_playing"
	IntentPlay         = "play"
	IntentPause        = "pause"
	IntentNext         = "next"
	IntentPrevious     = "previous"
	IntentRepeat       = "repeat"
	IntentAddQueue     = "add_queue"
	IntentPlaySearch   = "play_search"
	IntentSearch       = "search"
	IntentSettings     = "settings"
)

// EntityQuery is the entity key carrying the free-text search query.
const EntityQuery = "query"

// categoryResume is a lexicon-only category: its triggers map to IntentPlay.
const categoryResume = "resume"

// priority is the fixed category match order. The first category whose
// trigger occurs in the utterance wins — this ordering is a deliberate
// tie-break policy, not an accident.
var priority = []string{
	IntentHelp,
	IntentWhatsPlaying,
	IntentNext,
	IntentPrevious,
	IntentPause,
	IntentRepeat,
	IntentAddQueue,
	IntentPlaySearch,
	categoryResume,
	IntentSearch,
	IntentSettings,
}

// Result is the outcome of classifying one utterance.
type Result struct {
	Intent     string
	Confidence float64
	Entities   map[string]string
}

// Query returns the extracted search query, or "" when none was found.
func (r Result) Query() string {
	return r.Entities[EntityQuery]
}

// ValidTag reports whether tag belongs to the closed intent set.
func ValidTag(tag string) bool {
	switch tag {
	case IntentNone, IntentUnknown, IntentHelp, IntentWhatsPlaying,
		IntentPlay, IntentPause, IntentNext, IntentPrevious, IntentRepeat,
		IntentAddQueue, IntentPlaySearch, IntentSearch, IntentSettings:
		return true
	}
	return false
}

// queryBearing reports whether an intent carries a query entity.
func queryBearing(tag string) bool {
	return tag == IntentPlaySearch || tag == IntentAddQueue || tag == IntentSearch
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
