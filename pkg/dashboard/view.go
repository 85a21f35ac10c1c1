package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/srodi/proctop/pkg/types"
)

// View is everything the presentation layer needs for one frame.
type View struct {
	State         State
	Stats         types.Statistics
	Page          []types.Process
	FirstIndex    int // position of Page[0] within the filtered list
	MaxPage       int
	FilteredCount int
	CurrentUser   string
	Keys          Keys
}

// Terminal is the presentation boundary: it draws a view and hands back a
// single key, or reports that the timeout elapsed.
type Terminal interface {
	Render(view View) error
	ReadKey(timeout time.Duration) (key rune, ok bool, err error)
}

// View assembles the frame for the current state.
func (c *Controller) View() View {
	visible := c.Visible()
	page := c.state.Filter.PageIndex
	return View{
		State:         c.state,
		Stats:         c.stats,
		Page:          c.pager.Page(visible, page),
		FirstIndex:    page * c.pager.Size,
		MaxPage:       c.pager.MaxPage(len(visible)),
		FilteredCount: len(visible),
		CurrentUser:   c.CurrentUser(),
		Keys:          c.keys,
	}
}

// Run refreshes once, then renders and waits for input until the operator
// quits or ctx is cancelled. ctx is only checked between turns; an in-flight
// collection is never interrupted.
func (c *Controller) Run(ctx context.Context, term Terminal) error {
	c.Refresh(ctx)
	for {
		if ctx.Err() != nil || c.state.Screen == ScreenExited {
			return nil
		}
		if err := term.Render(c.View()); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		key, ok, err := term.ReadKey(c.interval)
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		c.Handle(ctx, Event{Key: key, Timeout: !ok})
	}
}
