//go:build !linux
// +build !linux

package ui

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/srodi/proctop/pkg/dashboard"
)

// Terminal is unavailable on non-Linux platforms.
type Terminal struct{}

// NewTerminal returns a Terminal whose methods all report the platform as unsupported.
func NewTerminal(in *os.File, out io.Writer, opts RenderOptions, logger *slog.Logger) *Terminal {
	return &Terminal{}
}

// Start always fails off Linux.
func (t *Terminal) Start() error {
	return errors.New("terminal dashboard is only supported on Linux")
}

// Close is a no-op.
func (t *Terminal) Close() error { return nil }

// Render implements dashboard.Terminal and always fails off Linux.
func (t *Terminal) Render(view dashboard.View) error {
	return errors.New("terminal dashboard is only supported on Linux")
}

// ReadKey implements dashboard.Terminal and always fails off Linux.
func (t *Terminal) ReadKey(timeout time.Duration) (rune, bool, error) {
	return 0, false, errors.New("terminal dashboard is only supported on Linux")
}
