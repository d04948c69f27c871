package cmd

import (
	"strings"
	"testing"
)

func TestStatusGlyph(t *testing.T) {
	cases := map[string]string{
		"pending": "·",
		"testing": "…",
		"success": "✓",
		"warning": "!",
		"error":   "✗",
		"bogus":   "?",
	}
	for status, glyph := range cases {
		// Color escapes may wrap the glyph depending on terminal detection.
		if got := statusGlyph(status); !strings.Contains(got, glyph) {
			t.Errorf("status %s: expected glyph %q, got %q", status, glyph, got)
		}
	}
}
