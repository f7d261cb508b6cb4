package handlers

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/cory-johannsen/firefight/internal/frontend/telnet"
	"github.com/cory-johannsen/firefight/internal/game/combat"
)

// LineIO adapts a reader and writer, typically stdin and stdout, to the
// combat Input, Output, EventWriter and Prompter interfaces.
type LineIO struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	w       io.Writer
	color   bool
}

// NewLineIO wraps r and w. When color is false all ANSI styling is stripped
// before writing.
func NewLineIO(r io.Reader, w io.Writer, color bool) *LineIO {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, telnet.MaxLineLength), telnet.MaxLineLength*4)
	return &LineIO{scanner: s, w: w, color: color}
}

// ReadLine returns the next line without its terminator. At end of input it
// returns io.EOF.
func (l *LineIO) ReadLine() (string, error) {
	if l.scanner.Scan() {
		return strings.TrimRight(l.scanner.Text(), "\r"), nil
	}
	if err := l.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return "", io.EOF
}

func (l *LineIO) style(text string) string {
	if l.color {
		return text
	}
	return telnet.StripANSI(text)
}

// WriteLine writes text followed by a newline.
func (l *LineIO) WriteLine(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, l.style(text)+"\n")
	return err
}

// WriteEvent writes the event narrative, coloured when enabled.
func (l *LineIO) WriteEvent(ev combat.Event) error {
	return l.WriteLine(RenderEvent(ev))
}

// WritePrompt writes prompt without a trailing newline.
func (l *LineIO) WritePrompt(prompt string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, prompt)
	return err
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
