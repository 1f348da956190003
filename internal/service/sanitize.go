package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every HTML element from free-text input.
var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText trims, strips HTML, and caps the input at maxLen runes.
func sanitizeText(input string, maxLen int) string {
	cleaned := strictPolicy.Sanitize(strings.TrimSpace(input))
	// bluemonday escapes the remaining text; undo so stored text stays plain.
	cleaned = html.UnescapeString(cleaned)
	runes := []rune(cleaned)
	if maxLen > 0 && len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return cleaned
}

// sanitizeOptional applies sanitizeText to an optional field, mapping empty
// results to nil.
func sanitizeOptional(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	cleaned := sanitizeText(*input, maxLen)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
