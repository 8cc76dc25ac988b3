package extract

import (
	"regexp"
	"strings"
)

// Vision models rarely return a bare YAML document: the list usually
// arrives fenced, prefixed with prose, or followed by a sign-off line.
// Recovery is an ordered cascade of heuristics, each a pure function
// over the text, tried until one produces a candidate region.

var (
	// First line of a plausible entry list: a list item whose first
	// mapping key is "word".
	reListStart = regexp.MustCompile(`(?m)^[ \t]*-[ \t]+word[ \t]*:`)

	// A fenced code block with an optional language tag.
	reFencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\r?\n(.*?)```")
)

// Recover extracts the most plausible entry-list region from raw model
// output. It never fails; when no heuristic matches, the original text
// is returned verbatim and left for the parser to reject.
func Recover(text string) string {
	t := strings.TrimSpace(text)

	if inner, ok := stripOuterFence(t); ok {
		t = strings.TrimSpace(inner)
	}

	if strings.HasPrefix(t, "- ") {
		return t
	}

	if block, ok := boundListBlock(t); ok {
		return block
	}

	if block, ok := findFencedList(text); ok {
		return block
	}

	return text
}

// stripOuterFence removes a fence wrapping the entire text, including an
// optional language tag on the opening line.
func stripOuterFence(text string) (string, bool) {
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return "", false
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return "", false
	}
	return strings.Join(lines[1:len(lines)-1], "\n"), true
}

// boundListBlock locates the first list item keyed by "word" and extends
// the region over the contiguous list: list items, indented
// continuations, and blank lines. The region stops at a fence marker or
// at the first flush-left line that is not part of the list, so trailing
// prose does not leak into the parser.
func boundListBlock(text string) (string, bool) {
	loc := reListStart.FindStringIndex(text)
	if loc == nil {
		return "", false
	}

	lines := strings.Split(text[loc[0]:], "\n")
	var kept []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			break
		}
		switch {
		case i == 0, trimmed == "":
			kept = append(kept, line)
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "-\t"):
			kept = append(kept, line)
		case line[0] == ' ' || line[0] == '\t':
			kept = append(kept, line)
		default:
			// Flush-left non-list line ends the region.
			kept = trimTrailingBlank(kept)
			return strings.Join(kept, "\n"), true
		}
	}

	kept = trimTrailingBlank(kept)
	return strings.Join(kept, "\n"), true
}

// findFencedList returns the body of the first fenced block anywhere in
// the text whose content begins with a list marker.
func findFencedList(text string) (string, bool) {
	for _, match := range reFencedBlock.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(match[1])
		if strings.HasPrefix(body, "- ") {
			return body, true
		}
	}
	return "", false
}

func trimTrailingBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
