package config

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envNames = []string{
	"CONFIG", "INTERVAL", "PAGE_SIZE", "PROC_ROOT", "LOG_FILE", "LOG_LEVEL", "METRICS_ADDR", "BANNER",
}

// isolate clears PROCTOP_* variables and points the .env lookup at an empty
// directory. Variables are left unset so a .env file can still populate them.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := envFile
	envFile = filepath.Join(dir, ".env")
	t.Cleanup(func() { envFile = orig })
	for _, name := range envNames {
		t.Setenv(envPrefix+name, "")
		os.Unsetenv(envPrefix + name)
	}
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "proctop.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval != 5*time.Second || cfg.PageSize != 9 || cfg.ProcRoot != "/proc" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" || cfg.MetricsAddr != "" || cfg.ShowBanner {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Keys.Quit != "~" || cfg.Keys.NextPage != "e" || cfg.Keys.PrevPage != "q" {
		t.Fatalf("unexpected default keys: %+v", cfg.Keys)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, `
interval: 2s
page_size: 4
proc_root: /host/proc
log_level: debug
keys:
  quit: x
`)

	cfg, err := Load([]string{"-config", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval != 2*time.Second || cfg.PageSize != 4 || cfg.ProcRoot != "/host/proc" || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Keys.Quit != "x" || cfg.Keys.Mode != "m" {
		t.Fatalf("partial keys should overlay defaults: %+v", cfg.Keys)
	}

	t.Setenv("PROCTOP_PAGE_SIZE", "6")
	t.Setenv("PROCTOP_LOG_LEVEL", "WARN")
	cfg, err = Load([]string{"-config", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 6 || cfg.LogLevel != "warn" {
		t.Fatalf("env should override file: %+v", cfg)
	}

	cfg, err = Load([]string{"-config", path, "-page-size", "3", "-banner"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 3 || !cfg.ShowBanner {
		t.Fatalf("flags should override env: %+v", cfg)
	}
	if cfg.Interval != 2*time.Second {
		t.Fatalf("unset flags must not reset file values, got %v", cfg.Interval)
	}
}

func TestLoadConfigPathFromEnvironment(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "page_size: 2\n")
	t.Setenv("PROCTOP_CONFIG", path)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageSize != 2 {
		t.Fatalf("expected page size from PROCTOP_CONFIG file, got %d", cfg.PageSize)
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(envFile, []byte("PROCTOP_INTERVAL=750ms\nPROCTOP_METRICS_ADDR=localhost:9100\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interval != 750*time.Millisecond || cfg.MetricsAddr != "localhost:9100" {
		t.Fatalf(".env values not applied: %+v", cfg)
	}
}

func TestLoadEmptyConfigFile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "")
	if _, err := Load([]string{"-config", path}); err != nil {
		t.Fatalf("empty config file should be accepted: %v", err)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		args []string
		env  map[string]string
	}{
		{name: "zero page size", args: []string{"-page-size", "0"}},
		{name: "page size above digit range", args: []string{"-page-size", "10"}},
		{name: "negative interval", args: []string{"-interval", "-1s"}},
		{name: "interval beyond a day", args: []string{"-interval", "600h"}},
		{name: "unknown log level", args: []string{"-log-level", "loud"}},
		{name: "bad metrics address", args: []string{"-metrics-addr", "nowhere"}},
		{name: "bad env interval", env: map[string]string{"PROCTOP_INTERVAL": "soon"}},
		{name: "bad env banner", env: map[string]string{"PROCTOP_BANNER": "maybe"}},
		{name: "unknown yaml field", yaml: "pagesize: 3\n"},
		{name: "list keys collide", yaml: "keys:\n  mode: s\n"},
		{name: "confirm keys collide", yaml: "keys:\n  send_term: k\n"},
		{name: "digit key", yaml: "keys:\n  sort: \"3\"\n"},
		{name: "multi-character key", yaml: "keys:\n  quit: qq\n"},
		{name: "missing config file", args: []string{"-config", "/nonexistent/proctop.yaml"}},
		{name: "unknown flag", args: []string{"-verbose"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range c.env {
				t.Setenv(k, v)
			}
			args := c.args
			if c.yaml != "" {
				args = append([]string{"-config", writeConfig(t, dir, c.yaml)}, args...)
			}
			if _, err := Load(args); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadHelp(t *testing.T) {
	isolate(t)
	if _, err := Load([]string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestValidateReportsFields(t *testing.T) {
	cfg := Default()
	cfg.PageSize = 12
	cfg.Keys.User = "m"
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "PageSize") || !strings.Contains(msg, "distinct") {
		t.Fatalf("error should name each failure: %v", msg)
	}
}

func TestDashboardKeysAndLevel(t *testing.T) {
	cfg := Default()
	cfg.Keys.Quit = "é"
	keys := cfg.DashboardKeys()
	if keys.Quit != 'é' || keys.SendTerm != 't' {
		t.Fatalf("unexpected dashboard keys: %+v", keys)
	}

	levels := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range levels {
		cfg.LogLevel = in
		if got := cfg.Level(); got != want {
			t.Fatalf("Level(%q): expected %v, got %v", in, want, got)
		}
	}
	if _, err := parseLogLevel("verbose"); err == nil {
		t.Fatalf("expected error for unsupported level")
	}
}
