//go:build linux
// +build linux

package action

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/srodi/proctop/pkg/types"
)

// kill allows tests to stub the syscall.
var kill = unix.Kill

// Handler sends signals with kill(2).
type Handler struct{}

// NewHandler returns a Handler bound to the host process table.
func NewHandler() *Handler {
	return &Handler{}
}

// Send delivers kind to pid and classifies the failure, if any.
func (h *Handler) Send(pid int, kind types.SignalKind) error {
	// 0 and negative pids address process groups
	if pid <= 0 {
		return fmt.Errorf("pid %d: %w", pid, ErrNoSuchProcess)
	}

	sig := unix.SIGTERM
	if kind == types.SignalKill {
		sig = unix.SIGKILL
	}

	err := kill(pid, sig)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ESRCH):
		return fmt.Errorf("pid %d: %w", pid, ErrNoSuchProcess)
	case errors.Is(err, unix.EPERM):
		return fmt.Errorf("pid %d: %w", pid, ErrPermissionDenied)
	default:
		return fmt.Errorf("pid %d: %w: %v", pid, ErrUnknown, err)
	}
}
