//go:build linux
// +build linux

package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/srodi/proctop/pkg/dashboard"
)

var poll = unix.Poll

const readChunk = 64

// Terminal drives a real tty: alternate screen, hidden cursor, raw input.
type Terminal struct {
	in      *os.File
	out     io.Writer
	opts    RenderOptions
	logger  *slog.Logger
	raw     bool
	restore []func()
	pending []byte
}

// NewTerminal wraps in and out. Nothing is changed on the tty until Start.
func NewTerminal(in *os.File, out io.Writer, opts RenderOptions, logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Terminal{in: in, out: out, opts: opts, logger: logger.With("component", "ui")}
}

// Start switches to the alternate buffer and puts stdin in raw mode when they
// are terminals. Close undoes whatever Start changed.
func (t *Terminal) Start() error {
	if f, ok := t.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(t.out, "\033[?1049h") // switch to alternate buffer
		fmt.Fprint(t.out, "\033[?25l")   // hide cursor
		t.restore = append(t.restore, func() {
			fmt.Fprint(t.out, "\033[?25h")   // show cursor
			fmt.Fprint(t.out, "\033[?1049l") // restore main buffer
		})
	}

	inFD := int(t.in.Fd())
	if !term.IsTerminal(inFD) {
		t.logger.Debug("stdin is not a terminal, reading cooked input")
		return nil
	}
	prev, err := term.MakeRaw(inFD)
	if err != nil {
		t.Close()
		return fmt.Errorf("enable raw input: %w", err)
	}
	t.raw = true
	t.restore = append(t.restore, func() {
		if err := term.Restore(inFD, prev); err != nil {
			t.logger.Warn("restore terminal", "err", err)
		}
	})
	return nil
}

// Close restores the terminal in reverse order of Start.
func (t *Terminal) Close() error {
	for i := len(t.restore) - 1; i >= 0; i-- {
		t.restore[i]()
	}
	t.restore = nil
	t.raw = false
	return nil
}

// Render implements dashboard.Terminal.
func (t *Terminal) Render(view dashboard.View) error {
	var frame bytes.Buffer
	frame.WriteString("\033[H\033[2J")
	if err := Render(&frame, view, t.opts); err != nil {
		return err
	}
	out := frame.String()
	if t.raw {
		// raw mode disables output post-processing
		out = strings.ReplaceAll(out, "\n", "\r\n")
	}
	_, err := io.WriteString(t.out, out)
	return err
}

// ReadKey implements dashboard.Terminal. ok is false when timeout elapsed
// without input. Keys typed ahead are buffered and returned one per call.
func (t *Terminal) ReadKey(timeout time.Duration) (rune, bool, error) {
	for !utf8.FullRune(t.pending) {
		ready, err := t.fill(timeout)
		if err != nil {
			return 0, false, err
		}
		if !ready {
			if len(t.pending) == 0 {
				return 0, false, nil
			}
			// truncated sequence; decode yields RuneError
			break
		}
	}

	key, size := utf8.DecodeRune(t.pending)
	t.pending = t.pending[size:]
	if key == ctrlC {
		return 0, false, ErrInterrupt
	}
	return key, true, nil
}

// fill waits up to timeout for input and appends whatever is available.
func (t *Terminal) fill(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(t.in.Fd()), Events: unix.POLLIN}}
	n, err := poll(fds, pollTimeout(timeout))
	if errors.Is(err, unix.EINTR) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("poll stdin: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	buf := make([]byte, readChunk)
	read, err := t.in.Read(buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, ErrInterrupt
		}
		return false, fmt.Errorf("read stdin: %w", err)
	}
	t.pending = append(t.pending, buf[:read]...)
	return true, nil
}

// pollTimeout converts d to poll(2) milliseconds. Negative values would block
// forever, so the result is kept within [0, MaxInt32].
func pollTimeout(d time.Duration) int {
	ms := d.Milliseconds()
	if ms < 0 {
		return 0
	}
	return int(min(ms, math.MaxInt32))
}
