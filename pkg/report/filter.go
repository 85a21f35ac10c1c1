package report

import (
	"sort"

	"github.com/srodi/proctop/pkg/types"
)

// Apply filters by run state, then by user, then sorts. The input slice is
// never modified.
func Apply(processes []types.Process, mode types.FilterMode, user string, order types.SortMode) []types.Process {
	filtered := make([]types.Process, 0, len(processes))
	for _, proc := range processes {
		if passesFilters(proc, mode, user) {
			filtered = append(filtered, proc)
		}
	}
	sortProcesses(filtered, order)
	return filtered
}

func passesFilters(proc types.Process, mode types.FilterMode, user string) bool {
	if mode != types.FilterAll && proc.StateCode() != mode.Code() {
		return false
	}
	if user != types.AllUsers && proc.UserName != user {
		return false
	}
	return true
}

// sortProcesses breaks ties by pid so each mode is a total order.
func sortProcesses(procs []types.Process, order types.SortMode) {
	switch order {
	case types.SortAlphabetic:
		sort.Slice(procs, func(i, j int) bool {
			if procs[i].Name == procs[j].Name {
				return procs[i].PID < procs[j].PID
			}
			return procs[i].Name < procs[j].Name
		})
	case types.SortPID:
		sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })
	default:
		sort.Slice(procs, func(i, j int) bool {
			if procs[i].RAMUsageKB == procs[j].RAMUsageKB {
				return procs[i].PID < procs[j].PID
			}
			return procs[i].RAMUsageKB > procs[j].RAMUsageKB
		})
	}
}
