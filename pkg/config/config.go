// Package config resolves proctop settings from defaults, a YAML file, a .env
// file, PROCTOP_* environment variables and command-line flags, in that order.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/srodi/proctop/pkg/dashboard"
	"github.com/srodi/proctop/pkg/types"
)

const envPrefix = "PROCTOP_"

// envFile is loaded from the working directory when present.
var envFile = ".env"

// Keys holds one-character bindings. Keys active on the same screen must
// differ; digits are reserved for row selection.
type Keys struct {
	Quit     string `yaml:"quit" validate:"len=1,excludesall=123456789"`
	Back     string `yaml:"back" validate:"len=1"`
	Mode     string `yaml:"mode" validate:"len=1,excludesall=123456789"`
	Sort     string `yaml:"sort" validate:"len=1,excludesall=123456789"`
	User     string `yaml:"user" validate:"len=1,excludesall=123456789"`
	NextPage string `yaml:"next_page" validate:"len=1,excludesall=123456789"`
	PrevPage string `yaml:"prev_page" validate:"len=1,excludesall=123456789"`
	Kill     string `yaml:"kill" validate:"len=1"`
	SendKill string `yaml:"send_kill" validate:"len=1"`
	SendTerm string `yaml:"send_term" validate:"len=1"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Interval    time.Duration `yaml:"interval" validate:"gt=0,lte=24h"`
	PageSize    int           `yaml:"page_size" validate:"min=1,max=9"`
	ProcRoot    string        `yaml:"proc_root" validate:"required"`
	LogFile     string        `yaml:"log_file"`
	LogLevel    string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	MetricsAddr string        `yaml:"metrics_addr" validate:"omitempty,hostname_port"`
	ShowBanner  bool          `yaml:"show_banner"`
	Keys        Keys          `yaml:"keys"`
}

// Default returns the built-in settings.
func Default() Config {
	k := dashboard.DefaultKeys()
	return Config{
		Interval: dashboard.DefaultInterval,
		PageSize: types.DefaultPageSize,
		ProcRoot: "/proc",
		LogLevel: "info",
		Keys: Keys{
			Quit:     string(k.Quit),
			Back:     string(k.Back),
			Mode:     string(k.Mode),
			Sort:     string(k.Sort),
			User:     string(k.User),
			NextPage: string(k.NextPage),
			PrevPage: string(k.PrevPage),
			Kill:     string(k.Kill),
			SendKill: string(k.SendKill),
			SendTerm: string(k.SendTerm),
		},
	}
}

type flagValues struct {
	configPath  string
	interval    time.Duration
	pageSize    int
	procRoot    string
	logFile     string
	logLevel    string
	metricsAddr string
	banner      bool
}

// Load resolves the configuration for args (without the program name).
// flag.ErrHelp is returned unwrapped when -h is given.
func Load(args []string) (Config, error) {
	cfg := Default()

	var fv flagValues
	fset := flag.NewFlagSet("proctop", flag.ContinueOnError)
	fset.StringVar(&fv.configPath, "config", "", "path to a YAML config file (env PROCTOP_CONFIG)")
	fset.DurationVar(&fv.interval, "interval", cfg.Interval, "refresh interval when no key is pressed (e.g. 3s, 1m)")
	fset.IntVar(&fv.pageSize, "page-size", cfg.PageSize, "processes per page (1-9)")
	fset.StringVar(&fv.procRoot, "proc-root", cfg.ProcRoot, "procfs mount point")
	fset.StringVar(&fv.logFile, "log-file", cfg.LogFile, "write logs to this file (default: discard)")
	fset.StringVar(&fv.logLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fset.StringVar(&fv.metricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address, e.g. :9100")
	fset.BoolVar(&fv.banner, "banner", cfg.ShowBanner, "show the proctop banner above the dashboard")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	path := fv.configPath
	if path == "" {
		path = strings.TrimSpace(os.Getenv(envPrefix + "CONFIG"))
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Interval = fv.interval
		case "page-size":
			cfg.PageSize = fv.pageSize
		case "proc-root":
			cfg.ProcRoot = fv.procRoot
		case "log-file":
			cfg.LogFile = fv.logFile
		case "log-level":
			cfg.LogLevel = fv.logLevel
		case "metrics-addr":
			cfg.MetricsAddr = fv.metricsAddr
		case "banner":
			cfg.ShowBanner = fv.banner
		}
	})

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if value := lookupEnv("INTERVAL"); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse %sINTERVAL: %w", envPrefix, err)
		}
		cfg.Interval = interval
	}

	if value := lookupEnv("PAGE_SIZE"); value != "" {
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse %sPAGE_SIZE: %w", envPrefix, err)
		}
		cfg.PageSize = size
	}

	if value := lookupEnv("PROC_ROOT"); value != "" {
		cfg.ProcRoot = value
	}

	if value := lookupEnv("LOG_FILE"); value != "" {
		cfg.LogFile = value
	}

	if value := lookupEnv("LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}

	if value := lookupEnv("METRICS_ADDR"); value != "" {
		cfg.MetricsAddr = value
	}

	if value := lookupEnv("BANNER"); value != "" {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parse %sBANNER: %w", envPrefix, err)
		}
		cfg.ShowBanner = enabled
	}
	return nil
}

func lookupEnv(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

// Validate checks field ranges and key bindings.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(distinctKeys, Keys{})
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// distinctKeys rejects bindings that collide on the screen where they are read.
func distinctKeys(sl validator.StructLevel) {
	k := sl.Current().Interface().(Keys)
	screens := [][]struct{ name, key string }{
		{{"Quit", k.Quit}, {"Mode", k.Mode}, {"Sort", k.Sort}, {"User", k.User}, {"NextPage", k.NextPage}, {"PrevPage", k.PrevPage}},
		{{"Back", k.Back}, {"Kill", k.Kill}},
		{{"SendKill", k.SendKill}, {"SendTerm", k.SendTerm}},
	}
	for _, bindings := range screens {
		seen := make(map[string]string, len(bindings))
		for _, b := range bindings {
			if b.key == "" {
				continue
			}
			if _, dup := seen[b.key]; dup {
				sl.ReportError(b.key, b.name, b.name, "distinct", "")
				continue
			}
			seen[b.key] = b.name
		}
	}
}

// Level maps LogLevel onto slog.
func (c Config) Level() slog.Level {
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLogLevel(input string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(input)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", input)
	}
}

// DashboardKeys converts the bindings for the dashboard controller.
func (c Config) DashboardKeys() dashboard.Keys {
	return dashboard.Keys{
		Quit:     firstRune(c.Keys.Quit),
		Back:     firstRune(c.Keys.Back),
		Mode:     firstRune(c.Keys.Mode),
		Sort:     firstRune(c.Keys.Sort),
		User:     firstRune(c.Keys.User),
		NextPage: firstRune(c.Keys.NextPage),
		PrevPage: firstRune(c.Keys.PrevPage),
		Kill:     firstRune(c.Keys.Kill),
		SendKill: firstRune(c.Keys.SendKill),
		SendTerm: firstRune(c.Keys.SendTerm),
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
