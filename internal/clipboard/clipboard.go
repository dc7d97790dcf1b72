// Package clipboard copies text to the user's clipboard.
package clipboard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no system clipboard is available.
var ErrUnsupported = errors.New("clipboard is not supported on this system")

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// System writes through the OS clipboard utilities (pbcopy, xclip, wl-copy, ...).
type System struct{}

// NewSystem returns the OS clipboard.
func NewSystem() *System {
	return &System{}
}

func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}

// OSC52 asks the terminal emulator to set its clipboard using the
// OSC 52 escape sequence. It works over SSH where no OS clipboard exists.
type OSC52 struct {
	mu sync.Mutex
	w  io.Writer
}

// NewOSC52 writes escape sequences to w, normally the controlling terminal.
func NewOSC52(w io.Writer) *OSC52 {
	return &OSC52{w: w}
}

func (o *OSC52) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	if _, err := io.WriteString(o.w, seq); err != nil {
		return fmt.Errorf("write osc52 sequence: %w", err)
	}
	return nil
}

// Func adapts a function to Writer.
type Func func(ctx context.Context, text string) error

func (f Func) WriteText(ctx context.Context, text string) error {
	return f(ctx, text)
}
