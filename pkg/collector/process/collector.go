package process

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/prometheus/procfs"
	"golang.org/x/time/rate"

	"github.com/srodi/proctop/pkg/types"
)

// procReadFile allows tests to stub reading /proc/PID/status.
var procReadFile = os.ReadFile

// lookupUserName allows tests to stub uid resolution.
var lookupUserName = func(uid int) (string, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Collector builds process snapshots from a proc filesystem.
type Collector struct {
	fs        procfs.FS
	procRoot  string
	logger    *slog.Logger
	userCache map[int]string
	skipLog   rate.Sometimes
	skipped   int
}

// NewCollector opens procRoot (normally /proc) for scanning.
func NewCollector(procRoot string, logger *slog.Logger) (*Collector, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("open proc root %s: %w", procRoot, err)
	}
	return &Collector{
		fs:        fs,
		procRoot:  procRoot,
		logger:    logger,
		userCache: make(map[int]string),
		skipLog:   rate.Sometimes{First: 5, Interval: 30 * time.Second},
	}, nil
}

// Collect returns every process that could be read. Processes that exit or
// refuse access mid-scan are skipped; only an unreadable proc root fails.
func (c *Collector) Collect() ([]types.Process, error) {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.procRoot, err)
	}

	// lowest directory wins when two records claim the same pid
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })

	c.skipped = 0
	result := make([]types.Process, 0, len(procs))
	seen := make(map[int]struct{}, len(procs))
	for _, p := range procs {
		data, err := procReadFile(filepath.Join(c.procRoot, strconv.Itoa(p.PID), "status"))
		if err != nil {
			c.skip(p.PID, err)
			continue
		}

		proc := parseStatus(data)
		if proc.PID <= 0 {
			c.skip(p.PID, fmt.Errorf("status record has no pid"))
			continue
		}
		if _, dup := seen[proc.PID]; dup {
			continue
		}
		seen[proc.PID] = struct{}{}

		if path, err := p.Executable(); err == nil && path != "" {
			proc.ProcessPath = path
		}
		if proc.UID != types.Unknown {
			proc.UserName = c.lookupUser(proc.UID)
		}
		result = append(result, proc)
	}
	return result, nil
}

// Skipped reports how many entries the last Collect dropped.
func (c *Collector) Skipped() int {
	return c.skipped
}

func (c *Collector) skip(pid int, err error) {
	c.skipped++
	c.skipLog.Do(func() {
		c.logger.Debug("skipping process", "pid", pid, "err", err)
	})
}

func (c *Collector) lookupUser(uid int) string {
	if name, ok := c.userCache[uid]; ok {
		return name
	}
	name := types.UnknownName
	if u, err := lookupUserName(uid); err == nil && u != "" {
		name = u
	}
	c.userCache[uid] = name
	return name
}
