package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"plain text untouched", "printer is on fire", 100, "printer is on fire"},
		{"whitespace trimmed", "  hello  ", 100, "hello"},
		{"tags stripped keeping text", "click <a href='x'>here</a> now", 100, "click here now"},
		{"script content removed entirely", "<script>alert(1)</script>ok", 100, "ok"},
		{"entities end up literal", "a &amp; b", 100, "a & b"},
		{"capped at rune boundary", strings.Repeat("ä", 10), 4, "ääää"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeText(tt.input, tt.max))
		})
	}
}

func TestSanitizeOptional(t *testing.T) {
	assert.Nil(t, sanitizeOptional(nil, 100))

	empty := "  <b></b>  "
	assert.Nil(t, sanitizeOptional(&empty, 100))

	value := "Building 4, floor 2"
	got := sanitizeOptional(&value, 100)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Building 4, floor 2", *got)
	}
}
