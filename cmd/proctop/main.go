//go:build linux

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/srodi/proctop/pkg/action"
	"github.com/srodi/proctop/pkg/collector/host"
	"github.com/srodi/proctop/pkg/collector/memory"
	"github.com/srodi/proctop/pkg/collector/process"
	"github.com/srodi/proctop/pkg/config"
	"github.com/srodi/proctop/pkg/dashboard"
	"github.com/srodi/proctop/pkg/logging"
	"github.com/srodi/proctop/pkg/metrics"
	"github.com/srodi/proctop/pkg/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "proctop: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.LogFile, cfg.Level())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	procs, err := process.NewCollector(cfg.ProcRoot, logger)
	if err != nil {
		return fmt.Errorf("initializing process collector: %w", err)
	}
	mem, err := memory.NewReader(cfg.ProcRoot)
	if err != nil {
		return fmt.Errorf("initializing memory reader: %w", err)
	}

	deps := dashboard.Deps{
		Processes: procs,
		Memory:    mem,
		Host:      host.ForRoot(cfg.ProcRoot),
		Signaller: action.NewHandler(),
		Logger:    logger,
	}
	if cfg.MetricsAddr != "" {
		exporter := metrics.NewExporter()
		deps.Observer = exporter
		go func() {
			if err := exporter.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
	}

	ctrl := dashboard.New(deps, dashboard.Options{
		Interval: cfg.Interval,
		PageSize: cfg.PageSize,
		Keys:     cfg.DashboardKeys(),
	})

	term := ui.NewTerminal(os.Stdin, os.Stdout, ui.RenderOptions{
		Banner:   cfg.ShowBanner,
		Interval: cfg.Interval,
	}, logger)
	if err := term.Start(); err != nil {
		return fmt.Errorf("terminal setup: %w", err)
	}
	defer term.Close()

	logger.Info("dashboard started", slog.String("proc_root", cfg.ProcRoot), slog.Duration("interval", cfg.Interval))
	err = ctrl.Run(ctx, term)
	if errors.Is(err, ui.ErrInterrupt) {
		return nil
	}
	return err
}
