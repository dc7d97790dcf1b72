// Package prompt implements alerts and confirmations on a terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Terminal prints alerts to out and reads confirmations from in.
type Terminal struct {
	mu        sync.Mutex
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewTerminal creates a Terminal. With assumeYes every confirmation
// succeeds without reading input.
func NewTerminal(in io.Reader, out io.Writer, assumeYes bool) *Terminal {
	return &Terminal{
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
	}
}

// Alert prints msg on its own line.
func (t *Terminal) Alert(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := fmt.Fprintln(t.out, msg); err != nil {
		log.Warn().Err(err).Msg("Failed to print alert")
	}
}

// Confirm asks msg and reports whether the answer was affirmative.
// EOF or a read error counts as no.
func (t *Terminal) Confirm(msg string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.assumeYes {
		return true
	}

	fmt.Fprintf(t.out, "%s [s/N] ", msg)

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		if err != io.EOF {
			log.Warn().Err(err).Msg("Failed to read confirmation")
		}
		fmt.Fprintln(t.out)
		return false
	}

	return IsYes(line)
}

// IsYes reports whether answer is an affirmative reply in Spanish or English.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "si", "sí", "y", "yes":
		return true
	default:
		return false
	}
}
