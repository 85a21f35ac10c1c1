package report

import "github.com/srodi/proctop/pkg/types"

// Aggregate derives the dashboard statistics from one snapshot and the system
// memory figures (kB, Unknown when unavailable). Used memory is the system-wide
// total minus available, never a sum of per-process RSS.
func Aggregate(processes []types.Process, totalKB, availableKB int64) types.Statistics {
	stats := types.Statistics{
		NumProcesses:      len(processes),
		UsedRAMMB:         types.Unknown,
		MaxAvailableRAMMB: types.Unknown,
		FreeRAMMB:         types.Unknown,
		Users:             []string{types.AllUsers},
	}

	if totalKB >= 0 {
		stats.MaxAvailableRAMMB = totalKB / 1024
	}
	if availableKB >= 0 {
		stats.FreeRAMMB = availableKB / 1024
	}
	if totalKB >= 0 && availableKB >= 0 {
		stats.UsedRAMMB = (totalKB - availableKB) / 1024
	}

	seenUsers := map[string]struct{}{types.AllUsers: {}}
	for _, proc := range processes {
		switch proc.StateCode() {
		case 'R':
			stats.Running++
		case 'S':
			stats.Sleeping++
		case 'Z':
			stats.Zombie++
		case 'T':
			stats.Stopped++
		case 'I':
			stats.Idle++
		default:
			stats.Other++
		}

		if _, ok := seenUsers[proc.UserName]; !ok {
			seenUsers[proc.UserName] = struct{}{}
			stats.Users = append(stats.Users, proc.UserName)
		}
	}

	return stats
}
