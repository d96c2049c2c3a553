package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/havud29/asyncdep/actuator"
	"github.com/havud29/asyncdep/config"
	"github.com/havud29/asyncdep/config/source"
	"github.com/havud29/asyncdep/core"
	"github.com/havud29/asyncdep/logging"
	"github.com/havud29/asyncdep/loop"
	"github.com/havud29/asyncdep/metrics"
	"github.com/havud29/asyncdep/web"
)

func main() {
	// 1) config
	var cfg config.Root
	mgr, err := config.NewManager(&cfg,
		config.Defaults{},
		&source.FileSource{BasePath: "configs", Profile: os.Getenv("ASYNCDEP_PROFILE")},
		&source.EnvSource{Files: []string{".env"}},
		&source.CLISource{},
	)
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	// 2) logging
	level := new(slog.LevelVar)
	logger := logging.NewWithLevel(os.Stdout, cfg.Logging, level).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	// 3) metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	obs, err := metrics.New(reg)
	if err != nil {
		logger.Error("metrics error", "error", err)
		os.Exit(1)
	}

	// 4) runtime, seeded with shared objects
	rt := core.NewRuntime(
		core.WithLogger(logger),
		core.WithObserver(obs),
		core.WithInitialCapacity(cfg.Scheduler.InitialCapacity),
	)
	if err := core.Provide(rt, cfg); err != nil {
		logger.Error("seed error", "error", err)
		os.Exit(1)
	}

	// 5) reload on SIGHUP; modules keep the config they were seeded with
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan config.Event, 1)
	mgr.Subscribe(events)
	go logging.Follow(ctx, events, level, logger)
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go mgr.ReloadOn(ctx, hup, func(err error) {
		logger.Warn("config reload failed", "error", err)
	})

	// 6) compose the app
	app := core.NewApp(logger, rt,
		loop.Module(loop.WithFrameObserver(obs)),
		web.Module(),
		actuator.Module(reg),
		demoModule(),
	)

	// 7) run
	if err := app.Run(ctx); err != nil {
		logger.Error("app error", "error", err)
		cancel()
		os.Exit(1)
	}
}
