package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/georgyangelov/react-obs/internal/config"
	"github.com/georgyangelov/react-obs/pkg/compositor"
	"github.com/georgyangelov/react-obs/pkg/layout/flex"
	"github.com/georgyangelov/react-obs/pkg/reconcile"
	"github.com/georgyangelov/react-obs/pkg/server"
	"github.com/georgyangelov/react-obs/pkg/shadow"
)

func serveCmd() *cobra.Command {
	var (
		configPath   string
		address      string
		adminAddress string
		tick         time.Duration
		logLevel     string
		logFormat    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scene server",
		Long: `Start the scene server.

Configuration is read from --config, or from reactobs.json or
reactobs.yaml in the working directory. Flags override the file.

Examples:
  reactobs serve
  reactobs serve --address=127.0.0.1:6666 --admin-address=:8080
  reactobs serve --config=scenes.yaml --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("address") {
				cfg.Server.Address = address
			}
			if flags.Changed("admin-address") {
				cfg.Server.AdminAddress = adminAddress
			}
			if flags.Changed("tick") {
				cfg.Layout.TickInterval = config.Duration(tick)
			}
			if flags.Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if flags.Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, os.Stderr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file (default reactobs.json or reactobs.yaml in the working directory)")
	cmd.Flags().StringVarP(&address, "address", "a", config.DefaultAddress, "Protocol listen address")
	cmd.Flags().StringVar(&adminAddress, "admin-address", "", "Admin HTTP address (health, metrics, debug, WebSocket)")
	cmd.Flags().DurationVar(&tick, "tick", config.DefaultTickInterval, "Layout tick interval")
	cmd.Flags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&logFormat, "log-format", config.DefaultLogFormat, "Log format: text or json")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadFromWorkingDir()
}

// newLogger builds the process logger from the log config.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// app is a fully wired scene server.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	comp      *compositor.Memory
	rec       *reconcile.Reconciler
	scheduler *reconcile.Scheduler
	server    *server.Server
	admin     *server.Admin
}

// newApp wires the compositor, reconciler, scheduler and servers from cfg.
func newApp(cfg *config.Config, logger *slog.Logger) *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var compOpts []compositor.MemoryOption
	if cfg.Compositor.CanvasWidth > 0 && cfg.Compositor.CanvasHeight > 0 {
		compOpts = append(compOpts, compositor.WithCanvas(cfg.Compositor.CanvasWidth, cfg.Compositor.CanvasHeight))
	}
	comp := compositor.NewMemory(compOpts...)
	for _, s := range cfg.Compositor.Sources {
		kind := s.Kind
		if kind == config.KindScene {
			kind = compositor.SceneTypeID
		}
		comp.Register(s.Name, kind, s.Width, s.Height)
	}

	rec := reconcile.New(shadow.NewRegistry(), comp, flex.New(),
		reconcile.WithLogger(logger),
		reconcile.WithMetrics(reconcile.NewMetrics(registry)))

	srv := server.New(&server.ServerConfig{
		Address:         cfg.Server.Address,
		MaxFrameSize:    cfg.Server.MaxFrameSize,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Std(),
		Logger:          logger,
		Registerer:      registry,
	}, server.NewDispatcher(rec, logger))

	a := &app{
		cfg:       cfg,
		logger:    logger,
		comp:      comp,
		rec:       rec,
		scheduler: reconcile.NewScheduler(rec),
		server:    srv,
	}
	if cfg.Server.AdminAddress != "" {
		a.admin = server.NewAdmin(cfg.Server.AdminAddress, srv, rec, registry)
	}
	return a
}

// start binds the listeners.
func (a *app) start() error {
	if err := a.server.Start(); err != nil {
		return err
	}
	if a.admin != nil {
		if err := a.admin.Start(); err != nil {
			_ = a.server.Stop(context.Background())
			return err
		}
	}
	return nil
}

// run ticks layout until ctx is done, then shuts everything down.
func (a *app) run(ctx context.Context) error {
	ticked := make(chan error, 1)
	go func() { ticked <- a.scheduler.Run(ctx, a.cfg.Layout.TickInterval.Std()) }()

	<-ctx.Done()
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	var firstErr error
	if a.admin != nil {
		if err := a.admin.Shutdown(shutdownCtx); err != nil {
			firstErr = err
		}
	}
	if err := a.server.Stop(shutdownCtx); err != nil && firstErr == nil {
		firstErr = err
	}
	<-ticked
	return firstErr
}

func runServe(ctx context.Context, cfg *config.Config, logs io.Writer) error {
	logger, err := newLogger(cfg, logs)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a := newApp(cfg, logger)
	if err := a.start(); err != nil {
		return err
	}

	logger.Info("reactobs started",
		"version", version,
		"address", a.server.Addr().String(),
		"admin", cfg.Server.AdminAddress,
		"sources", len(cfg.Compositor.Sources),
		"tick", cfg.Layout.TickInterval.String())
	if len(cfg.Compositor.Sources) == 0 {
		logger.Warn("no compositor sources configured; find_source will fail for every name")
	}

	return a.run(ctx)
}
