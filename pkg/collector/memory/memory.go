package memory

import (
	"errors"
	"fmt"

	"github.com/prometheus/procfs"

	"github.com/srodi/proctop/pkg/types"
)

// ErrMemoryKeyMissing is returned when meminfo has no row for the requested kind.
var ErrMemoryKeyMissing = errors.New("memory key not found in meminfo")

// Reader reads system-wide memory figures from <procRoot>/meminfo.
type Reader struct {
	fs procfs.FS
}

// NewReader opens the proc filesystem mounted at procRoot.
func NewReader(procRoot string) (*Reader, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("open proc root %s: %w", procRoot, err)
	}
	return &Reader{fs: fs}, nil
}

// Memory returns the requested figure in kB.
// TODO: future scenario, consider container memory limits
func (r *Reader) Memory(kind types.MemoryKind) (int64, error) {
	info, err := r.fs.Meminfo()
	if err != nil {
		return types.Unknown, fmt.Errorf("reading meminfo: %w", err)
	}

	var value *uint64
	switch kind {
	case types.MemoryTotal:
		value = info.MemTotal
	case types.MemoryAvailable:
		value = info.MemAvailable
	}
	if value == nil {
		return types.Unknown, fmt.Errorf("%s: %w", kind, ErrMemoryKeyMissing)
	}
	return int64(*value), nil
}

// MemoryOrUnknown folds any failure into the Unknown sentinel.
func (r *Reader) MemoryOrUnknown(kind types.MemoryKind) int64 {
	kb, err := r.Memory(kind)
	if err != nil {
		return types.Unknown
	}
	return kb
}
