package process

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/srodi/proctop/pkg/types"
)

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func addProc(t *testing.T, root string, dir int, status string) string {
	t.Helper()
	procDir := filepath.Join(root, strconv.Itoa(dir))
	mustMkdir(t, procDir)
	if status != "" {
		writeFile(t, filepath.Join(procDir, "status"), status)
	}
	return procDir
}

func stubUsers(t *testing.T, names map[int]string) *int {
	t.Helper()
	t.Cleanup(func() { lookupUserName = defaultLookupUserName })
	calls := 0
	lookupUserName = func(uid int) (string, error) {
		calls++
		if name, ok := names[uid]; ok {
			return name, nil
		}
		return "", errors.New("unknown uid")
	}
	return &calls
}

var defaultLookupUserName = lookupUserName

func newTestCollector(t *testing.T, root string) *Collector {
	t.Helper()
	coll, err := NewCollector(root, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	return coll
}

func TestCollectBuildsSnapshot(t *testing.T) {
	root := t.TempDir()
	initDir := addProc(t, root, 1, "Name:\tinit\nPid:\t1\nPPid:\t0\nState:\tS (sleeping)\nVmRSS:\t512 kB\nUid:\t0\t0\t0\t0\n")
	if err := os.Symlink("/sbin/init", filepath.Join(initDir, "exe")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	addProc(t, root, 4242, "Name:\tworker\nPid:\t4242\nPPid:\t1\nState:\tR (running)\nVmRSS:\t2048 kB\nUid:\t1000\t1000\t1000\t1000\n")
	writeFile(t, filepath.Join(root, "meminfo"), "MemTotal: 1 kB\n")

	calls := stubUsers(t, map[int]string{0: "root"})
	coll := newTestCollector(t, root)

	procs, err := coll.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(procs) != 2 {
		t.Fatalf("expected 2 processes, got %d: %+v", len(procs), procs)
	}

	byPID := make(map[int]types.Process, len(procs))
	for _, p := range procs {
		byPID[p.PID] = p
	}
	initProc := byPID[1]
	if initProc.ProcessPath != "/sbin/init" {
		t.Fatalf("expected resolved exe path, got %q", initProc.ProcessPath)
	}
	if initProc.UserName != "root" {
		t.Fatalf("expected root user, got %q", initProc.UserName)
	}
	worker := byPID[4242]
	if worker.ProcessPath != "" {
		t.Fatalf("missing exe link should leave path empty, got %q", worker.ProcessPath)
	}
	if worker.UserName != types.UnknownName {
		t.Fatalf("unresolvable uid should map to sentinel, got %q", worker.UserName)
	}
	if *calls != 2 {
		t.Fatalf("expected one lookup per uid, got %d", *calls)
	}

	if _, err := coll.Collect(); err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	if *calls != 2 {
		t.Fatalf("expected cached user names on second scan, got %d lookups", *calls)
	}
}

func TestCollectSkipsVanishedAndBrokenEntries(t *testing.T) {
	root := t.TempDir()
	addProc(t, root, 10, "Name:\tok\nPid:\t10\nState:\tS (sleeping)\n")
	addProc(t, root, 11, "")                                  // exited before status was read
	addProc(t, root, 12, "Name:\tnopid\nState:\tR (running)\n") // no Pid row
	addProc(t, root, 13, "Name:\tclone\nPid:\t10\n")           // duplicate pid
	mustMkdir(t, filepath.Join(root, "sys"))
	stubUsers(t, nil)

	coll := newTestCollector(t, root)
	procs, err := coll.Collect()
	if err != nil {
		t.Fatalf("Collect must not fail on per-entry errors: %v", err)
	}
	if len(procs) != 1 || procs[0].PID != 10 || procs[0].Name != "ok" {
		t.Fatalf("expected only pid 10, got %+v", procs)
	}
	if coll.Skipped() != 2 {
		t.Fatalf("expected 2 skipped entries, got %d", coll.Skipped())
	}
}

func TestCollectPIDsArePositiveAndUnique(t *testing.T) {
	root := t.TempDir()
	for pid := 1; pid <= 30; pid++ {
		addProc(t, root, pid, "Name:\tp\nPid:\t"+strconv.Itoa(pid)+"\nState:\tS\n")
	}
	stubUsers(t, nil)

	procs, err := newTestCollector(t, root).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	seen := make(map[int]bool)
	for _, p := range procs {
		if p.PID <= 0 {
			t.Fatalf("non-positive pid in snapshot: %+v", p)
		}
		if seen[p.PID] {
			t.Fatalf("duplicate pid %d", p.PID)
		}
		seen[p.PID] = true
	}
	if len(procs) != 30 {
		t.Fatalf("expected 30 processes, got %d", len(procs))
	}
}

func TestCollectStatusReadErrorIsSkipped(t *testing.T) {
	root := t.TempDir()
	addProc(t, root, 20, "Name:\ta\nPid:\t20\n")
	addProc(t, root, 21, "Name:\tb\nPid:\t21\n")
	stubUsers(t, nil)

	t.Cleanup(func() { procReadFile = os.ReadFile })
	procReadFile = func(path string) ([]byte, error) {
		if filepath.Base(filepath.Dir(path)) == "21" {
			return nil, os.ErrPermission
		}
		return os.ReadFile(path)
	}

	procs, err := newTestCollector(t, root).Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(procs) != 1 || procs[0].PID != 20 {
		t.Fatalf("expected permission failure to skip pid 21 only, got %+v", procs)
	}
}
