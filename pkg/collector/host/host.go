// Package host gathers the machine facts shown in the dashboard header.
package host

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/common"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"

	"github.com/srodi/proctop/pkg/types"
)

// Seams for tests; both lookups are best-effort.
var (
	hostInfo = host.InfoWithContext
	loadAvg  = load.AvgWithContext
)

// Summary returns whatever host facts are available. Missing pieces stay zero.
func Summary(ctx context.Context) types.HostSummary {
	var summary types.HostSummary
	if info, err := hostInfo(ctx); err == nil && info != nil {
		summary.Hostname = info.Hostname
		summary.Kernel = info.KernelVersion
		summary.Uptime = time.Duration(info.Uptime) * time.Second
	}
	if avg, err := loadAvg(ctx); err == nil && avg != nil {
		summary.Load1 = avg.Load1
		summary.Load5 = avg.Load5
		summary.Load15 = avg.Load15
	}
	return summary
}

// ForRoot binds Summary to the proc filesystem at procRoot so the header
// describes the same host as the process table.
func ForRoot(procRoot string) func(context.Context) types.HostSummary {
	return func(ctx context.Context) types.HostSummary {
		return Summary(WithProcRoot(ctx, procRoot))
	}
}

// WithProcRoot points gopsutil's /proc reads at procRoot.
func WithProcRoot(ctx context.Context, procRoot string) context.Context {
	if procRoot == "" {
		return ctx
	}
	return context.WithValue(ctx, common.EnvKey, common.EnvMap{common.HostProcEnvKey: procRoot})
}
