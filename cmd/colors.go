package cmd

import (
	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// statusGlyph maps a checklist state to its terminal glyph.
func statusGlyph(status string) string {
	switch status {
	case "pending":
		return "·"
	case "testing":
		return colorInfo("…")
	case "success":
		return colorSuccess("✓")
	case "warning":
		return colorWarn("!")
	case "error":
		return colorError("✗")
	default:
		return "?"
	}
}
