// Package main is the entry point for the island stats service.
// It loads configuration, wires the collectors into the sampler, and exposes
// samples to the display layer through the local feed or the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/notchkit/island/internal/autostart"
	"github.com/notchkit/island/internal/collector"
	"github.com/notchkit/island/internal/config"
	"github.com/notchkit/island/internal/display"
	"github.com/notchkit/island/internal/feed"
	"github.com/notchkit/island/internal/island"
	"github.com/notchkit/island/internal/platform"
	"github.com/notchkit/island/internal/sampler"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	configPath  = flag.String("config", "", "Path to configuration file (default: auto-discover)")
	showVersion = flag.Bool("version", false, "Show version and exit")
	feedAddr    = flag.String("feed-addr", "", "Display feed listen address")
	logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	interval    = flag.Duration("interval", 0, "Sampling interval")
	console     = flag.Bool("console", false, "Render samples to the terminal")
	once        = flag.Bool("once", false, "Print a single sample and exit")
	noFeed      = flag.Bool("no-feed", false, "Disable the display feed")
	install     = flag.Bool("install-login-item", false, "Start the island at login and exit")
	uninstall   = flag.Bool("uninstall-login-item", false, "Remove the login item and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("island %s\n", version)
		os.Exit(0)
	}

	cli := config.CLIOverrides{
		FeedAddr: *feedAddr,
		LogLevel: *logLevel,
		Interval: *interval,
	}
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadLayered(cli, embeddedConfig, *configPath)
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *noFeed {
		cfg.Feed.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	if *install || *uninstall {
		if err := manageLoginItem(*install, logger); err != nil {
			logger.Fatal("Login item update failed", zap.Error(err))
		}
		return
	}

	logger.Info("Starting island",
		zap.String("version", version),
		zap.Duration("interval", cfg.Sampler.Interval.Duration))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
		cancel()
	}()

	smp := newSampler(cfg, logger)

	if *once {
		printOnce(ctx, smp, cfg.Sampler.GPURefresh.Duration)
		return
	}

	run(ctx, cfg, smp, logger)
	logger.Info("Island stopped")
}

// newSampler builds the collector registry and the sampler over it.
func newSampler(cfg *config.Config, logger *zap.Logger) *sampler.Sampler {
	plat := platform.New()
	logger.Debug("Platform detected", zap.String("platform", plat.Name()))

	cpu := collector.NewCPUCollector(logger)

	registry := collector.NewRegistry(logger)
	registry.Register(cpu)
	registry.Register(collector.NewMemoryCollector())
	registry.Register(collector.NewDiskCollector(cfg.Sampler.DiskPath, logger))
	registry.Register(collector.NewGPUCollector(plat, cpu.Overall, cfg.Sampler.GPURefresh.Duration, logger))
	registry.Register(collector.NewTemperatureCollector(plat, logger))
	registry.Register(collector.NewUptimeCollector())

	return sampler.New(registry, cfg.Sampler.Interval.Duration, logger)
}

// printOnce prints one settled sample: CPU load has a baseline and the GPU
// reading was taken after CPU load was known.
func printOnce(ctx context.Context, smp *sampler.Sampler, gpuRefresh time.Duration) {
	sample, ok := smp.CollectSettled(ctx, gpuRefresh)
	if !ok {
		return
	}
	_ = display.NewConsole(os.Stdout).Write(sample)
}

// run wires the island controller to its display adapters and blocks until
// the context is cancelled.
func run(ctx context.Context, cfg *config.Config, smp *sampler.Sampler, logger *zap.Logger) {
	ctrl := island.New(smp, cfg.Island.AutoHideDelay.Duration, logger)
	defer ctrl.Close()

	ctrl.AddObserver(island.ObserverFunc(func(e island.Event) {
		logger.Debug("Island event", zap.Stringer("event", e))
	}))

	if *console {
		samples, unsubscribe := smp.Subscribe()
		defer unsubscribe()
		out := display.NewConsole(os.Stdout)
		go func() {
			for s := range samples {
				if err := out.Write(s); err != nil {
					logger.Warn("Console write failed", zap.Error(err))
				}
			}
		}()
	}

	// The console and show_on_start hold the island for the whole run, so
	// feed clients leaving never hide it.
	if *console || cfg.Island.ShowOnStart {
		ctrl.Acquire()
		defer ctrl.Release()
	}

	if !cfg.Feed.Enabled {
		<-ctx.Done()
		return
	}

	hub := feed.NewHub(ctrl, logger)
	srv := feed.NewServer(cfg.Feed.Addr, hub, smp, ctrl, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Display feed failed", zap.Error(err))
	}
}

// manageLoginItem installs or removes the per-user login item.
func manageLoginItem(install bool, logger *zap.Logger) error {
	mgr := autostart.New()
	if !install {
		if err := mgr.Uninstall(); err != nil {
			return err
		}
		logger.Info("Login item removed", zap.String("name", mgr.ServiceName()))
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}
	if installed, err := mgr.IsInstalled(); err == nil && installed {
		logger.Info("Login item already installed, replacing", zap.String("name", mgr.ServiceName()))
		if err := mgr.Uninstall(); err != nil {
			return err
		}
	}
	if err := mgr.Install(exe); err != nil {
		return err
	}
	logger.Info("Login item installed",
		zap.String("name", mgr.ServiceName()),
		zap.String("exec", exe))
	return nil
}

// initLogger creates a zap logger based on the configuration.
// It outputs to stderr (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(os.Stderr),
			level,
		),
	}

	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			))
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
