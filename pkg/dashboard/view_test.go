package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedKey struct {
	key     rune
	timeout bool
}

type fakeTerminal struct {
	script   []scriptedKey
	views    []View
	timeouts []time.Duration
	onRead   func()
}

func (f *fakeTerminal) Render(view View) error {
	f.views = append(f.views, view)
	return nil
}

func (f *fakeTerminal) ReadKey(timeout time.Duration) (rune, bool, error) {
	f.timeouts = append(f.timeouts, timeout)
	if f.onRead != nil {
		f.onRead()
	}
	if len(f.script) == 0 {
		return 0, false, errors.New("script exhausted")
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.key, !next.timeout, nil
}

func TestRunDrivesUntilQuit(t *testing.T) {
	h := newHarness(t, makeProcs(20))
	term := &fakeTerminal{script: []scriptedKey{
		{key: 'e'},
		{timeout: true},
		{key: '~'},
	}}

	if err := h.ctrl.Run(context.Background(), term); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(term.views) != 3 {
		t.Fatalf("expected a render per turn, got %d", len(term.views))
	}
	if term.views[1].State.Filter.PageIndex != 1 {
		t.Fatalf("second frame should show page 1, got %d", term.views[1].State.Filter.PageIndex)
	}
	// harness refresh + Run refresh + timeout refresh
	if h.source.calls != 3 {
		t.Fatalf("expected 3 collects, got %d", h.source.calls)
	}
	for _, d := range term.timeouts {
		if d != DefaultInterval {
			t.Fatalf("expected %v poll timeout, got %v", DefaultInterval, d)
		}
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	h := newHarness(t, makeProcs(3))
	ctx, cancel := context.WithCancel(context.Background())
	term := &fakeTerminal{
		script: []scriptedKey{{key: 'm'}, {key: 'm'}},
		onRead: cancel,
	}
	if err := h.ctrl.Run(ctx, term); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(term.views) != 1 {
		t.Fatalf("expected loop to stop after the cancelled turn, got %d frames", len(term.views))
	}
}

func TestRunReportsTerminalErrors(t *testing.T) {
	h := newHarness(t, makeProcs(3))
	if err := h.ctrl.Run(context.Background(), &fakeTerminal{}); err == nil {
		t.Fatalf("expected read error to surface")
	}
}
