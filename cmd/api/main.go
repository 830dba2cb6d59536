package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohammadpnp/user-bulkops/internal/bootstrap"
	"github.com/mohammadpnp/user-bulkops/internal/config"
	"github.com/mohammadpnp/user-bulkops/internal/logger"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "bulkops.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg.Database)
	if err != nil {
		zlog.Fatal("failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	if err := stores.Migrate(ctx); err != nil {
		zlog.Fatal("failed to migrate", zap.Error(err))
	}

	services := bootstrap.NewServices(stores.Users, stores.AuditLogs, cfg.Bulk, zlog)
	server := bootstrap.NewHTTPServer(cfg.HTTP, services, zlog)

	go func() {
		zlog.Info("http server listening", zap.String("addr", cfg.Addr()))
		if err := server.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
