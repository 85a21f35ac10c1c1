// Package action delivers termination signals to processes picked on the dashboard.
package action

import (
	"errors"

	"github.com/srodi/proctop/pkg/types"
)

// Typed failures returned by Send. None of them are fatal to the dashboard.
var (
	ErrNoSuchProcess    = errors.New("no such process")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnknown          = errors.New("signal delivery failed")
)

// Signaller is the capability the dashboard needs from this package.
type Signaller interface {
	Send(pid int, kind types.SignalKind) error
}
