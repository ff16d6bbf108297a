// Package agent implements the financial planning pipeline: profile
// extraction, plan generation, and the orchestrating personal assistant.
package agent

import "strings"

// The model backend returns schema-shaped free text: numbered sections, one
// per line. Parsing is positional and best-effort; short responses degrade
// to empty fields rather than failing the turn.

// lines splits a response into trimmed line-sections. Empty lines are kept
// because position is what binds a line to its field.
func lines(response string) []string {
	parts := strings.Split(response, "\n")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// fieldAt returns the i-th line-section, or "" when the response has fewer
// sections.
func fieldAt(secs []string, i int) string {
	if i < len(secs) {
		return secs[i]
	}
	return ""
}

// listAt splits the i-th line-section into sentences, or returns nil when
// the response has fewer sections.
func listAt(secs []string, i int) []string {
	if i >= len(secs) {
		return nil
	}
	return sentences(secs[i])
}

// sentences splits text on sentence terminators, trims each piece, and
// drops empties.
func sentences(text string) []string {
	pieces := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var result []string
	for _, p := range pieces {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
