// Package telnet serves firefight sessions over Telnet with ANSI colour.
package telnet

import (
	"fmt"
	"regexp"
)

// SGR escape sequences used by the frontend.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
	White  = "\033[37m"

	BrightBlack  = "\033[90m"
	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Colorize wraps text with the given ANSI style and a reset suffix. An empty
// style returns text unchanged.
func Colorize(style, text string) string {
	if style == "" {
		return text
	}
	return style + text + Reset
}

// Colorf is Colorize applied to a formatted string.
func Colorf(style, format string, args ...any) string {
	return Colorize(style, fmt.Sprintf(format, args...))
}

var csiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// StripANSI removes CSI escape sequences, leaving only printable text.
func StripANSI(s string) string {
	return csiPattern.ReplaceAllString(s, "")
}
