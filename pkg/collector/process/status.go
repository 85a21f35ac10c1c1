package process

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/srodi/proctop/pkg/types"
)

// parseStatus turns a /proc/PID/status record into a Process. Rows that are
// missing or malformed leave the matching field at its sentinel.
func parseStatus(data []byte) types.Process {
	proc := types.NewProcess()

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			if value != "" {
				proc.Name = value
			}
		case "State":
			proc.State = value
		case "Pid":
			proc.PID = firstInt(value, proc.PID)
		case "PPid":
			proc.PPID = firstInt(value, proc.PPID)
		case "Uid":
			// real, effective, saved, filesystem; the first one owns the process
			proc.UID = firstInt(value, proc.UID)
		case "FDSize":
			proc.NumFileDescriptors = firstInt(value, proc.NumFileDescriptors)
		case "Threads":
			proc.Threads = firstInt(value, proc.Threads)
		case "VmRSS":
			proc.RAMUsageKB = int64(firstInt(value, int(proc.RAMUsageKB)))
		case "VmSwap":
			proc.SwapUsageKB = int64(firstInt(value, int(proc.SwapUsageKB)))
		}
	}
	return proc
}

// firstInt parses the first whitespace separated token, e.g. "512 kB" -> 512.
func firstInt(value string, fallback int) int {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return fallback
	}
	return n
}
