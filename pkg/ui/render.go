package ui

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/srodi/proctop/pkg/dashboard"
	"github.com/srodi/proctop/pkg/types"
)

const barWidth = 30

// RenderOptions controls the parts of a frame that do not come from the view.
type RenderOptions struct {
	Banner   bool
	Interval time.Duration
}

// Render writes one full frame for v to w.
func Render(w io.Writer, v dashboard.View, opts RenderOptions) error {
	var buf bytes.Buffer
	if opts.Banner {
		buf.WriteString(Banner())
	}
	writeHeader(&buf, v, opts)

	switch v.State.Screen {
	case dashboard.ScreenDetail:
		writeDetail(&buf, v)
	case dashboard.ScreenKillConfirm:
		writeDetail(&buf, v)
		writeKillPrompt(&buf, v)
	default:
		writeList(&buf, v)
	}

	if v.State.Message != "" {
		fmt.Fprintf(&buf, "\n%s%s%s\n", bold+alertRed, v.State.Message, reset)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeHeader(buf *bytes.Buffer, v dashboard.View, opts RenderOptions) {
	stats := v.Stats
	fmt.Fprintf(buf, "proctop (press %s to exit)\n", keyName(v.Keys.Quit))
	updated := "never"
	if !stats.CollectedAt.IsZero() {
		updated = stats.CollectedAt.Format(time.RFC3339)
	}
	fmt.Fprintf(buf, "Updated: %s | Interval: %v\n", updated, opts.Interval)

	if h := stats.Host; h.Hostname != "" {
		fmt.Fprintf(buf, "Host: %s | Kernel: %s | Up: %v | Load: %.2f %.2f %.2f\n",
			h.Hostname, h.Kernel, h.Uptime.Truncate(time.Minute), h.Load1, h.Load5, h.Load15)
	}
	buf.WriteString("\n")

	fmt.Fprintf(buf, "Number of processes: %d\n", stats.NumProcesses)
	fmt.Fprintf(buf, "RAM usage: %s/%s (%s free) %s\n",
		megabytes(stats.UsedRAMMB), megabytes(stats.MaxAvailableRAMMB), megabytes(stats.FreeRAMMB),
		usageBar(stats.UsedRAMMB, stats.MaxAvailableRAMMB))
	fmt.Fprintf(buf, "Running: %d, Sleeping: %d, Stopped: %d, Zombie: %d, Idle: %d, Other: %d\n\n",
		stats.Running, stats.Sleeping, stats.Stopped, stats.Zombie, stats.Idle, stats.Other)
}

func writeList(buf *bytes.Buffer, v dashboard.View) {
	modes := make([]string, len(types.FilterModes))
	for i, m := range types.FilterModes {
		modes[i] = m.String()
	}
	sorts := make([]string, len(types.SortModes))
	for i, s := range types.SortModes {
		sorts[i] = s.String()
	}

	writeChoices(buf, "Mode", keyName(v.Keys.Mode), modes, v.State.Filter.FilterMode.String())
	writeChoices(buf, "Sort", keyName(v.Keys.Sort), sorts, v.State.Filter.SortMode.String())
	writeChoices(buf, "User", keyName(v.Keys.User), v.Stats.Users, v.CurrentUser)

	fmt.Fprintf(buf, "\nPage %d/%d (%d matching) | %s previous, %s next, 1-%d details\n",
		v.State.Filter.PageIndex+1, v.MaxPage+1, v.FilteredCount,
		keyName(v.Keys.PrevPage), keyName(v.Keys.NextPage), max(len(v.Page), 1))

	if len(v.Page) == 0 {
		buf.WriteString("No processes match the current filters\n")
		return
	}
	tw := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPID\tNAME\tINDEX\tSTATE\tRAM\tUSER")
	for i, p := range v.Page {
		fmt.Fprintf(tw, "[%d]\t%d\t%s\t%d\t%s\t%s\t%s\n",
			i+1, p.PID, p.Name, v.FirstIndex+i+1, p.State, kilobytes(p.RAMUsageKB), p.UserName)
	}
	tw.Flush()
}

// writeChoices prints every option with the active one highlighted.
func writeChoices(buf *bytes.Buffer, label, key string, options []string, current string) {
	fmt.Fprintf(buf, "%s [%s]: ", label, key)
	for i, opt := range options {
		if i > 0 {
			buf.WriteString("/")
		}
		if opt == current {
			buf.WriteString(bold + cobalt + opt + reset)
			continue
		}
		buf.WriteString(opt)
	}
	buf.WriteString("\n")
}

func writeDetail(buf *bytes.Buffer, v dashboard.View) {
	p := v.State.Selected
	tw := tabwriter.NewWriter(buf, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "PID:\t%d\n", p.PID)
	fmt.Fprintf(tw, "State:\t%s\n", p.State)
	fmt.Fprintf(tw, "RAM usage:\t%s\n", kilobytes(p.RAMUsageKB))
	fmt.Fprintf(tw, "Process path:\t%s\n", p.ProcessPath)
	fmt.Fprintf(tw, "PPID:\t%s\n", number(p.PPID))
	fmt.Fprintf(tw, "Threads:\t%d\n", p.Threads)
	fmt.Fprintf(tw, "Swap usage:\t%s\n", kilobytes(p.SwapUsageKB))
	fmt.Fprintf(tw, "Open file descriptors:\t%s\n", number(p.NumFileDescriptors))
	fmt.Fprintf(tw, "UID:\t%s\n", number(p.UID))
	fmt.Fprintf(tw, "User:\t%s\n", p.UserName)
	tw.Flush()

	if v.State.Screen == dashboard.ScreenDetail {
		fmt.Fprintf(buf, "\nPress %s[%s]%s to kill the process, press %s[%s]%s to go back\n",
			bold+alertRed, keyName(v.Keys.Kill), reset,
			bold+alertRed, keyName(v.Keys.Back), reset)
	}
}

func writeKillPrompt(buf *bytes.Buffer, v dashboard.View) {
	p := v.State.Selected
	fmt.Fprintf(buf, "\n%sSend a signal to %s (pid %d)?%s\n", bold+alertRed, p.Name, p.PID, reset)
	fmt.Fprintf(buf, "[%s] %s  [%s] %s  any other key cancels\n",
		keyName(v.Keys.SendKill), types.SignalKill,
		keyName(v.Keys.SendTerm), types.SignalTerminate)
}

func keyName(r rune) string {
	if r == 0 {
		return "-"
	}
	return string(r)
}

func number(n int) string {
	if n == types.Unknown {
		return "unknown"
	}
	return strconv.Itoa(n)
}

// kilobytes switches to MB above 1024 kB.
func kilobytes(kb int64) string {
	switch {
	case kb < 0:
		return "unknown"
	case kb > 1024:
		return fmt.Sprintf("%dMB", kb/1024)
	default:
		return fmt.Sprintf("%dkB", kb)
	}
}

func megabytes(mb int64) string {
	if mb < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dMB", mb)
}

func usageBar(used, total int64) string {
	if used < 0 || total <= 0 {
		return ""
	}
	filled := int(min(used*barWidth/total, barWidth))
	color := mint
	if filled*4 >= barWidth*3 {
		color = honeyOrange
	}
	return "[" + color + strings.Repeat("#", filled) + reset + dim + strings.Repeat("-", barWidth-filled) + reset + "]"
}
