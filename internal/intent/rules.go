package intent

import (
	"strings"

	"github.com/josemri/plyr-voice/internal/lexicon"
)

// Rules is the trigger-matching classifier. It is a pure function of the
// utterance text and the locale lexicon.
type Rules struct {
	table  *lexicon.Table
	locale string
}

// NewRules creates a rule-based classifier for the given locale.
func NewRules(table *lexicon.Table, locale string) *Rules {
	return &Rules{table: table, locale: locale}
}

// Classify matches the utterance against the trigger lexicon. It never
// fails: unmatched input yields IntentUnknown, empty input IntentNone.
func (r *Rules) Classify(utterance string) Result {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return Result{Intent: IntentNone, Confidence: 1.0}
	}

	text := strings.ToLower(trimmed)
	quoted := quotedSubstring(text)

	for _, category := range priority {
		for _, phrase := range r.table.Triggers(r.locale, category) {
			idx := strings.Index(text, phrase)
			if idx < 0 {
				continue
			}
			return r.categoryResult(category, text, idx+len(phrase), quoted)
		}
	}

	// No trigger matched, but a quoted title is a strong play signal on its own.
	if quoted != "" {
		return Result{
			Intent:     IntentPlaySearch,
			Confidence: 0.9,
			Entities:   map[string]string{EntityQuery: quoted},
		}
	}

	return Result{Intent: IntentUnknown}
}

func (r *Rules) categoryResult(category, text string, afterTrigger int, quoted string) Result {
	switch category {
	case IntentAddQueue:
		query := extractQuery(text, afterTrigger, quoted)
		return queryResult(IntentAddQueue, 0.9, query)

	case IntentPlaySearch:
		query := extractQuery(text, afterTrigger, quoted)
		if query == "" {
			// Bare "play" is a transport command, not a search.
			return Result{Intent: IntentPlay, Confidence: 0.9}
		}
		return queryResult(IntentPlaySearch, 0.9, query)

	case categoryResume:
		return Result{Intent: IntentPlay, Confidence: 0.9}

	case IntentSearch:
		query := extractQuery(text, afterTrigger, quoted)
		if query == "" {
			return Result{Intent: IntentSearch, Confidence: 0.6}
		}
		return queryResult(IntentSearch, 0.95, query)

	default:
		return Result{Intent: category, Confidence: 0.95}
	}
}

func queryResult(tag string, confidence float64, query string) Result {
	res := Result{Intent: tag, Confidence: confidence}
	if query != "" {
		res.Entities = map[string]string{EntityQuery: query}
	}
	return res
}

// extractQuery takes the text following the matched trigger phrase, trimmed
// and with surrounding quotes stripped. If that is blank it falls back to the
// quoted substring located earlier in the utterance.
func extractQuery(text string, afterTrigger int, quoted string) string {
	tail := ""
	if afterTrigger < len(text) {
		tail = strings.TrimSpace(text[afterTrigger:])
		tail = strings.Trim(tail, `"'`)
		tail = strings.TrimSpace(tail)
	}
	if tail == "" {
		return quoted
	}
	return tail
}

// quotedSubstring returns the content of the first "..." pair, or "".
func quotedSubstring(text string) string {
	open := strings.IndexByte(text, '"')
	if open < 0 {
		return ""
	}
	closing := strings.IndexByte(text[open+1:], '"')
	if closing < 0 {
		return ""
	}
	return strings.TrimSpace(text[open+1 : open+1+closing])
}
