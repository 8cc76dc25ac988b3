// Package extract turns noisy vision-model output into clean,
// deduplicated vocabulary cards.
//
// The model is asked for a YAML list of word/back/tags mappings but in
// practice wraps it in code fences or prose. Extraction first recovers
// the entry-list region heuristically, then parses it strictly and
// normalizes each item.
package extract

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"vocab/pkg/models"
)

// Report counts items that were dropped during normalization. Dropping
// is silent by contract; the counts exist so callers can log why a word
// is missing from the output.
type Report struct {
	Kept             int
	SkippedInvalid   int // non-mapping items and items without a word
	SkippedDuplicate int // case-insensitive duplicates of earlier words
}

// Extract recovers a YAML entry list from raw model output and returns
// the normalized cards in original order.
//
// Duplicate words (case-insensitive) keep their first occurrence. A
// *ParseError is returned when no mapping or list of mappings can be
// recovered from the text.
func Extract(raw string) ([]models.Card, Report, error) {
	var report Report

	recovered := Recover(raw)

	var doc any
	if err := yaml.Unmarshal([]byte(recovered), &doc); err != nil {
		return nil, report, newParseError(fmt.Errorf("invalid YAML: %w", err), recovered)
	}

	var items []any
	switch v := doc.(type) {
	case map[string]any:
		// A single entry parses as one mapping; wrap it.
		items = []any{v}
	case []any:
		items = v
	default:
		return nil, report, newParseError(ErrNoEntryList, recovered)
	}

	seen := make(map[string]struct{}, len(items))
	var cards []models.Card
	for _, item := range items {
		mapping, ok := item.(map[string]any)
		if !ok {
			report.SkippedInvalid++
			continue
		}

		word := strings.TrimSpace(stringify(mapping["word"]))
		if word == "" {
			report.SkippedInvalid++
			continue
		}
		word = normalizeWord(word)

		key := strings.ToLower(word)
		if _, dup := seen[key]; dup {
			report.SkippedDuplicate++
			continue
		}
		seen[key] = struct{}{}

		cards = append(cards, models.Card{
			Word: word,
			Back: strings.TrimSpace(stringify(mapping["back"])),
			Tags: strings.TrimSpace(stringify(mapping["tags"])),
		})
		report.Kept++
	}

	return cards, report, nil
}

// normalizeWord applies the capitalization policy: a leading upper-case
// letter marks a proper name and is preserved; everything else is
// lower-cased.
func normalizeWord(word string) string {
	first, _ := utf8.DecodeRuneInString(word)
	if unicode.IsUpper(first) {
		return word
	}
	return strings.ToLower(word)
}

// stringify coerces a parsed YAML value to plain text. Sequences are
// joined with ", " so a tags list still reads naturally on a card.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
