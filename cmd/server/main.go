// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valpere/DressCodex/internal/config"
	"github.com/valpere/DressCodex/internal/monitoring"
	"github.com/valpere/DressCodex/internal/utils"
	"github.com/valpere/DressCodex/internal/wardrobe"
	"github.com/valpere/DressCodex/pkg/api"
)

// Version information (set by build flags)
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv("DRESSCODEX_CONFIG"), "path to the YAML configuration file")
	addr := flag.String("addr", "", "listen address, overrides server.address")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("dresscodex-server %s (built %s)\n", version, buildTime)
		return
	}

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "dresscodex-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Server.Address = addr
	}

	utils.ConfigureLogging(cfg.Log.Level, cfg.Log.Format)
	logger := utils.NewComponentLogger("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *monitoring.MetricsManager
	if cfg.Metrics.Enabled {
		metrics = monitoring.NewMetricsManager(cfg.Metrics.MonitoringConfig())
	}

	client := api.NewClientFromConfig(cfg, metrics)
	health := monitoring.NewHealthManager(version, 5*time.Second, metrics)

	var store wardrobe.Store
	if cfg.Mongo.URI != "" {
		mongoStore, err := wardrobe.NewMongoStore(ctx, cfg.Mongo, metrics)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoStore.Close(closeCtx)
		}()
		store = mongoStore
		health.RegisterCheck(monitoring.HealthCheck{Name: "mongo", Critical: true, Check: mongoStore.Ping})
	} else {
		logger.Warn("mongo.uri not set, event routes are disabled")
	}

	if cfg.Server.WatchConfig && configPath != "" {
		watcher, err := config.NewConfigWatcher(configPath, utils.NewComponentLogger("config-watcher"))
		if err != nil {
			logger.WithField("error", err.Error()).Warn("config watching disabled")
		} else {
			defer watcher.Close()
			watcher.OnChange(func(updated *config.Config) {
				utils.ConfigureLogging(updated.Log.Level, updated.Log.Format)
				client.Resolver().Reload(updated.Retailers)
			})
		}
	}

	srv := NewServer(client, store, metrics, health, logger)
	srv.metricsPath = cfg.Metrics.Path

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]interface{}{
			"address": cfg.Server.Address,
			"llm":     cfg.LLM.Provider,
			"mongo":   store != nil,
		}).Info("server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
