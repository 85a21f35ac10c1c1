//go:build !linux
// +build !linux

package action

import "github.com/srodi/proctop/pkg/types"

// Handler is a placeholder on non-Linux platforms.
type Handler struct{}

// NewHandler returns a handler that refuses every request.
func NewHandler() *Handler {
	return &Handler{}
}

// Send always fails on unsupported platforms.
func (h *Handler) Send(pid int, kind types.SignalKind) error {
	return ErrUnknown
}
