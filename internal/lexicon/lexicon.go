// Package lexicon holds the per-locale string tables the assistant depends on:
// trigger phrase lists for each intent category and the localized reply
// strings. It is a pure data dependency — the classifier and dispatcher stay
// language-agnostic and ask the table for phrases and replies by key.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales.yaml
var embeddedLocales []byte

// localeData is the per-locale section of the lexicon file.
type localeData struct {
	// Triggers maps an intent category to a pipe-delimited phrase list,
	// e.g. "next|skip|skip this song".
	Triggers map[string]string `yaml:"triggers"`

	// Replies maps a reply key to a format string.
	Replies map[string]string `yaml:"replies"`
}

type lexiconFile struct {
	Locales map[string]localeData `yaml:"locales"`
}

// Table resolves trigger phrases and reply strings per locale.
type Table struct {
	locales       map[string]localeData
	defaultLocale string
}

// Load builds a Table from the embedded defaults, optionally overlaid with a
// user-supplied YAML file. defaultLocale is used when a lookup locale has no
// data (falls back to "en" if that is missing too).
func Load(path, defaultLocale string) (*Table, error) {
	var base lexiconFile
	if err := yaml.Unmarshal(embeddedLocales, &base); err != nil {
		return nil, fmt.Errorf("parsing embedded locales: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading lexicon file: %w", err)
		}
		var overlay lexiconFile
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return nil, fmt.Errorf("parsing lexicon file %s: %w", path, err)
		}
		merge(&base, &overlay)
	}

	if defaultLocale == "" {
		defaultLocale = "en"
	}

	return &Table{locales: base.Locales, defaultLocale: defaultLocale}, nil
}

// merge overlays user data on top of the embedded defaults. Whole keys are
// replaced, not appended, so a user file can prune default phrases.
func merge(base, overlay *lexiconFile) {
	if base.Locales == nil {
		base.Locales = make(map[string]localeData)
	}
	for loc, data := range overlay.Locales {
		dst, ok := base.Locales[loc]
		if !ok {
			dst = localeData{
				Triggers: make(map[string]string),
				Replies:  make(map[string]string),
			}
		}
		if dst.Triggers == nil {
			dst.Triggers = make(map[string]string)
		}
		if dst.Replies == nil {
			dst.Replies = make(map[string]string)
		}
		for k, v := range data.Triggers {
			dst.Triggers[k] = v
		}
		for k, v := range data.Replies {
			dst.Replies[k] = v
		}
		base.Locales[loc] = dst
	}
}

func (t *Table) resolve(locale string) (localeData, bool) {
	if data, ok := t.locales[locale]; ok {
		return data, true
	}
	if data, ok := t.locales[t.defaultLocale]; ok {
		return data, true
	}
	data, ok := t.locales["en"]
	return data, ok
}

// Triggers returns the lowercased trigger phrases for a category in the given
// locale, falling back to the default locale. Returns nil for unknown
// categories.
func (t *Table) Triggers(locale, category string) []string {
	data, ok := t.resolve(locale)
	if !ok {
		return nil
	}
	raw, ok := data.Triggers[category]
	if !ok || raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

// Reply formats the reply string registered under key for the given locale.
// Missing keys fall back to the default locale, then to the key itself so a
// gap in a translation never produces an empty user-visible string.
func (t *Table) Reply(locale, key string, args ...any) string {
	if data, ok := t.locales[locale]; ok {
		if format, ok := data.Replies[key]; ok {
			return sprintf(format, args)
		}
	}
	if data, ok := t.resolve(t.defaultLocale); ok {
		if format, ok := data.Replies[key]; ok {
			return sprintf(format, args)
		}
	}
	return key
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
