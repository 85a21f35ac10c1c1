package types

import "time"

// DefaultPageSize controls how many processes fit on one dashboard page.
const DefaultPageSize = 9

// Sentinels for fields the OS did not report.
const (
	Unknown     = -1
	UnknownName = "none"
	AllUsers    = "ALL"
)

// Process is one entry of a snapshot. Values are copied around freely and never
// mutated after the collector builds them.
type Process struct {
	PID                int
	PPID               int
	Name               string
	State              string // full text, e.g. "S (sleeping)"
	RAMUsageKB         int64
	SwapUsageKB        int64
	NumFileDescriptors int
	Threads            int
	ProcessPath        string
	UID                int
	UserName           string
}

// NewProcess returns a Process with every field set to its "unknown" sentinel.
func NewProcess() Process {
	return Process{
		PID:                Unknown,
		PPID:               Unknown,
		Name:               UnknownName,
		RAMUsageKB:         Unknown,
		SwapUsageKB:        Unknown,
		NumFileDescriptors: Unknown,
		Threads:            1,
		UID:                Unknown,
		UserName:           UnknownName,
	}
}

// StateCode returns the one-letter run state, or 0 when the state is unknown.
func (p Process) StateCode() byte {
	if p.State == "" {
		return 0
	}
	return p.State[0]
}

// HostSummary carries the header facts about the machine being watched.
type HostSummary struct {
	Hostname string
	Kernel   string
	Uptime   time.Duration
	Load1    float64
	Load5    float64
	Load15   float64
}

// Statistics is derived from one snapshot and replaced wholesale on refresh.
type Statistics struct {
	NumProcesses      int
	UsedRAMMB         int64
	MaxAvailableRAMMB int64
	FreeRAMMB         int64

	Running  int
	Sleeping int
	Zombie   int
	Stopped  int
	Idle     int
	Other    int

	// Users starts with AllUsers followed by distinct names in first-seen order.
	Users []string

	Host        HostSummary
	CollectedAt time.Time
}

// MemoryKind selects a row of the system memory table.
type MemoryKind int

const (
	MemoryTotal MemoryKind = iota
	MemoryAvailable
)

func (k MemoryKind) String() string {
	switch k {
	case MemoryTotal:
		return "MemTotal"
	case MemoryAvailable:
		return "MemAvailable"
	default:
		return "unknown"
	}
}

// SignalKind is the OS-agnostic set of termination requests.
type SignalKind int

const (
	SignalTerminate SignalKind = iota
	SignalKill
)

func (k SignalKind) String() string {
	if k == SignalKill {
		return "KILL"
	}
	return "TERMINATE"
}

// FilterMode narrows the list to a single run state.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterRunning
	FilterSleeping
	FilterIdle
	FilterZombie
	FilterStopped
)

// FilterModes lists the modes in the order the cycle key walks them.
var FilterModes = []FilterMode{FilterAll, FilterRunning, FilterSleeping, FilterIdle, FilterZombie, FilterStopped}

func (m FilterMode) String() string {
	switch m {
	case FilterAll:
		return "ALL"
	case FilterRunning:
		return "RUNNING"
	case FilterSleeping:
		return "SLEEPING"
	case FilterIdle:
		return "IDLE"
	case FilterZombie:
		return "ZOMBIE"
	case FilterStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Code is the state letter the mode keeps. FilterAll has no code.
func (m FilterMode) Code() byte {
	switch m {
	case FilterRunning:
		return 'R'
	case FilterSleeping:
		return 'S'
	case FilterIdle:
		return 'I'
	case FilterZombie:
		return 'Z'
	case FilterStopped:
		return 'T'
	default:
		return 0
	}
}

// SortMode picks one of the total orders applied to the filtered list.
type SortMode int

const (
	SortRAM SortMode = iota
	SortAlphabetic
	SortPID
)

// SortModes lists the orders in the order the cycle key walks them.
var SortModes = []SortMode{SortRAM, SortAlphabetic, SortPID}

func (m SortMode) String() string {
	switch m {
	case SortRAM:
		return "RAM usage"
	case SortAlphabetic:
		return "Alphabet"
	case SortPID:
		return "PID"
	default:
		return "unknown"
	}
}

// FilterState is the operator's current view selection.
type FilterState struct {
	FilterMode FilterMode
	SortMode   SortMode
	UserIndex  int
	PageIndex  int
}
