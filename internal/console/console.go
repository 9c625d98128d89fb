package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Logger receives operator-facing status lines.
type Logger interface {
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)
	Plain(msg string)
	Banner(msg string)
}

const (
	reset  = "\x1b[0m"
	bright = "\x1b[1m"
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	blue   = "\x1b[34m"
)

// Terminal writes marked status lines, colorized when the destination is a TTY.
type Terminal struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// New constructs a Terminal writing to w.
func New(w io.Writer) *Terminal {
	return &Terminal{w: w, color: colorEnabled(w)}
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Info prints a blue informational line.
func (t *Terminal) Info(msg string) { t.line(blue, "ℹ️  "+msg) }

// Success prints a green line for a completed step.
func (t *Terminal) Success(msg string) { t.line(green, "✅ "+msg) }

// Warning prints a yellow line for a tolerated problem.
func (t *Terminal) Warning(msg string) { t.line(yellow, "⚠️  "+msg) }

// Error prints a red line for a fatal problem.
func (t *Terminal) Error(msg string) { t.line(red, "❌ "+msg) }

// Plain prints msg without marker or color.
func (t *Terminal) Plain(msg string) { t.line("", msg) }

// Banner prints msg between separator rules.
func (t *Terminal) Banner(msg string) {
	rule := strings.Repeat("=", 60)
	t.line(bright, rule)
	if msg != "" {
		t.line(bright, msg)
		t.line(bright, rule)
	}
}

func (t *Terminal) line(color, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.color && color != "" {
		fmt.Fprintf(t.w, "%s%s%s\n", color, msg, reset)
		return
	}
	fmt.Fprintln(t.w, msg)
}
