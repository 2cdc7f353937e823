package ui

import (
	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
)

// SetEnabled forces colour output on or off regardless of terminal detection.
func SetEnabled(on bool) {
	color.NoColor = !on
}

