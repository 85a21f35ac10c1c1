// Package dashboard holds the interactive state machine tying collection,
// filtering, paging and process actions together.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/srodi/proctop/pkg/action"
	"github.com/srodi/proctop/pkg/report"
	"github.com/srodi/proctop/pkg/types"
)

// DefaultInterval is how long the list screen waits for a key before refreshing.
const DefaultInterval = 5 * time.Second

// Screen is the state of the dashboard state machine.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenKillConfirm
	ScreenExited
)

func (s Screen) String() string {
	switch s {
	case ScreenList:
		return "list"
	case ScreenDetail:
		return "detail"
	case ScreenKillConfirm:
		return "kill-confirm"
	case ScreenExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Event is one turn of operator input. Timeout is set when the wait for a key
// elapsed without one.
type Event struct {
	Key     rune
	Timeout bool
}

// State is everything the operator has selected.
type State struct {
	Screen   Screen
	Filter   types.FilterState
	Selected types.Process
	Message  string
}

// ProcessSource produces a fresh snapshot.
type ProcessSource interface {
	Collect() ([]types.Process, error)
}

// MemorySource reports system memory in kB, Unknown when unavailable.
type MemorySource interface {
	MemoryOrUnknown(kind types.MemoryKind) int64
}

// Observer is told about every completed refresh.
type Observer interface {
	ObserveRefresh(stats types.Statistics, skipped int)
}

// Deps are the collaborators the controller drives.
type Deps struct {
	Processes ProcessSource
	Memory    MemorySource
	Host      func(ctx context.Context) types.HostSummary
	Signaller action.Signaller
	Observer  Observer
	Logger    *slog.Logger
	Now       func() time.Time
}

// Options tune cadence and layout.
type Options struct {
	Interval time.Duration
	PageSize int
	Keys     Keys
}

// Controller owns the current snapshot, its statistics and the operator state.
type Controller struct {
	deps     Deps
	interval time.Duration
	keys     Keys
	pager    report.Pager
	logger   *slog.Logger

	snapshot []types.Process
	stats    types.Statistics
	state    State
}

// New builds a controller. Call Refresh (or Run) before rendering.
func New(deps Deps, opts Options) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Keys == (Keys{}) {
		opts.Keys = DefaultKeys()
	}
	return &Controller{
		deps:     deps,
		interval: opts.Interval,
		keys:     opts.Keys,
		pager:    report.NewPager(opts.PageSize),
		logger:   logger.With("component", "dashboard"),
		stats:    types.Statistics{Users: []string{types.AllUsers}},
	}
}

// State returns a copy of the current operator state.
func (c *Controller) State() State {
	return c.state
}

// Statistics returns the statistics of the current snapshot.
func (c *Controller) Statistics() types.Statistics {
	return c.stats
}

// Refresh replaces the snapshot and statistics and resets the page. If the
// proc root cannot be listed the previous snapshot stays current and the page
// still resets.
func (c *Controller) Refresh(ctx context.Context) {
	procs, err := c.deps.Processes.Collect()
	if err != nil {
		c.logger.Warn("process snapshot failed", "err", err)
		c.state.Message = fmt.Sprintf("refresh failed: %v", err)
		c.state.Filter.PageIndex = 0
		return
	}

	total := int64(types.Unknown)
	available := int64(types.Unknown)
	if c.deps.Memory != nil {
		total = c.deps.Memory.MemoryOrUnknown(types.MemoryTotal)
		available = c.deps.Memory.MemoryOrUnknown(types.MemoryAvailable)
	}

	stats := report.Aggregate(procs, total, available)
	if c.deps.Host != nil {
		stats.Host = c.deps.Host(ctx)
	}
	stats.CollectedAt = c.deps.Now()

	c.state.Filter.UserIndex = followUser(c.stats.Users, stats.Users, c.state.Filter.UserIndex)
	c.state.Filter.PageIndex = 0
	c.snapshot = procs
	c.stats = stats

	skipped := 0
	if counter, ok := c.deps.Processes.(interface{ Skipped() int }); ok {
		skipped = counter.Skipped()
	}
	c.logger.Debug("refreshed", "processes", stats.NumProcesses, "skipped", skipped)
	if c.deps.Observer != nil {
		c.deps.Observer.ObserveRefresh(stats, skipped)
	}
}

// followUser keeps the selected user across refreshes, falling back to ALL.
func followUser(prev, next []string, index int) int {
	if index <= 0 || index >= len(prev) {
		return 0
	}
	for i, name := range next {
		if name == prev[index] {
			return i
		}
	}
	return 0
}

// Handle applies one event and returns the resulting state.
func (c *Controller) Handle(ctx context.Context, ev Event) State {
	switch c.state.Screen {
	case ScreenList:
		c.handleList(ctx, ev)
	case ScreenDetail:
		c.handleDetail(ev)
	case ScreenKillConfirm:
		c.handleKillConfirm(ev)
	}
	return c.state
}

func (c *Controller) handleList(ctx context.Context, ev Event) {
	c.state.Message = ""
	filter := &c.state.Filter

	if ev.Timeout {
		c.Refresh(ctx)
		return
	}

	switch key := ev.Key; {
	case key == c.keys.Quit:
		c.state.Screen = ScreenExited
	case key == c.keys.Mode:
		filter.FilterMode = types.FilterMode((int(filter.FilterMode) + 1) % len(types.FilterModes))
		filter.PageIndex = 0
	case key == c.keys.Sort:
		filter.SortMode = types.SortMode((int(filter.SortMode) + 1) % len(types.SortModes))
		filter.PageIndex = 0
	case key == c.keys.User:
		filter.UserIndex = (filter.UserIndex + 1) % len(c.stats.Users)
		filter.PageIndex = 0
	case key == c.keys.NextPage:
		filter.PageIndex = c.pager.Next(filter.PageIndex, len(c.Visible()))
	case key == c.keys.PrevPage:
		filter.PageIndex = c.pager.Prev(filter.PageIndex)
	case isRowKey(key):
		if proc, ok := c.pager.Row(c.Visible(), filter.PageIndex, int(key-'0')); ok {
			c.state.Selected = proc
			c.state.Screen = ScreenDetail
		}
	default:
		c.Refresh(ctx)
	}
}

func (c *Controller) handleDetail(ev Event) {
	if ev.Timeout {
		return
	}
	switch ev.Key {
	case c.keys.Back:
		c.state.Screen = ScreenList
		c.state.Message = ""
	case c.keys.Kill:
		c.state.Screen = ScreenKillConfirm
		c.state.Message = ""
	}
}

func (c *Controller) handleKillConfirm(ev Event) {
	kind := types.SignalTerminate
	switch {
	case ev.Timeout:
		c.state.Screen = ScreenDetail
		return
	case ev.Key == c.keys.SendKill:
		kind = types.SignalKill
	case ev.Key == c.keys.SendTerm:
	default:
		c.state.Screen = ScreenDetail
		return
	}

	target := c.state.Selected
	if err := c.deps.Signaller.Send(target.PID, kind); err != nil {
		c.logger.Warn("signal failed", "pid", target.PID, "signal", kind, "err", err)
		c.state.Screen = ScreenDetail
		c.state.Message = fmt.Sprintf("%s failed: %v", kind, err)
		return
	}
	c.logger.Info("signal sent", "pid", target.PID, "name", target.Name, "signal", kind)
	c.state.Screen = ScreenList
	c.state.Message = fmt.Sprintf("sent %s to %s (pid %d)", kind, target.Name, target.PID)
}

// CurrentUser is the user filter value selected by UserIndex.
func (c *Controller) CurrentUser() string {
	idx := c.state.Filter.UserIndex
	if idx < 0 || idx >= len(c.stats.Users) {
		return types.AllUsers
	}
	return c.stats.Users[idx]
}

// Visible is the filtered and sorted list that pages are cut from.
func (c *Controller) Visible() []types.Process {
	f := c.state.Filter
	return report.Apply(c.snapshot, f.FilterMode, c.CurrentUser(), f.SortMode)
}
