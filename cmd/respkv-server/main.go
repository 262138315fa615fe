package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
	"github.com/yndnr/respkv/internal/infra/confloader"
	"github.com/yndnr/respkv/internal/infra/shutdown"
	"github.com/yndnr/respkv/internal/server/config"
	"github.com/yndnr/respkv/internal/server/httpserver"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "In-memory key-value server speaking RESP",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "RESP listen address (overrides server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "Admin HTTP listen address for /metrics and /healthz (overrides server.http.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides log.level)",
			},
		},
		Action: run,
	}
}

// flagOverrides maps explicitly set flags onto configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for flag, key := range map[string]string{
		"addr":      "server.redis.addr",
		"http-addr": "server.http.addr",
		"log-level": "log.level",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	return overrides
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	overrides := flagOverrides(c)

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)

	store := memory.New()
	metrics := metric.NewRegistry()
	if err := metrics.Register(metric.NewKeysCollector(store)); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisServer := redisserver.New(&redisserver.Config{
		Addr:           cfg.Server.Redis.Addr,
		ReadBufferSize: cfg.Server.Redis.ReadBufferSize,
		IdleTimeout:    cfg.Server.Redis.IdleTimeout,
		RateLimit:      cfg.Server.Redis.RateLimit,
	}, store, log, metrics)
	if err := redisServer.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}

	// Hooks run in reverse, so the RESP listener closes first.
	if cfg.Server.HTTP.Addr != "" {
		httpServer := httpserver.New(cfg.Server.HTTP.Addr, metrics.Handler())
		errs := make(chan error, 1)
		if err := httpServer.Start(errs); err != nil {
			_ = redisServer.Shutdown(context.Background())
			return fmt.Errorf("start http server: %w", err)
		}
		log.Info("http server listening", "addr", httpServer.Addr().String())

		go func() {
			select {
			case err := <-errs:
				log.Error("http server error", "error", err)
				shutdownHandler.Trigger(fmt.Errorf("http server: %w", err))
			case <-shutdownHandler.Done():
			}
		}()

		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down http server")
			return httpServer.Shutdown(ctx)
		})
	}

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down redis server")
		cancel()
		return redisServer.Shutdown(ctx)
	})

	if configFile != "" {
		watcher, err := watchConfig(configFile, overrides, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, then the file, environment and flag overrides.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchConfig reloads the file on change and applies the log level.
// Listener settings require a restart.
func watchConfig(configFile string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(path, overrides)
		if err != nil {
			log.Warn("config reload failed", "file", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}
