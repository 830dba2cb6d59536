package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mohammadpnp/user-bulkops/internal/bootstrap"
	"github.com/mohammadpnp/user-bulkops/internal/config"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	"github.com/mohammadpnp/user-bulkops/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	adminID string
)

var rootCmd = &cobra.Command{
	Use:   "bulkctl",
	Short: "Run bulk user operations from the command line",
	Long: `bulkctl drives the same bulk engine as the HTTP API: CSV imports from local
files, CSV exports, the import template and schema migration. Every mutation
is audited under the administrator given with --admin.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "bulkops.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&adminID, "admin", "", "acting administrator id (UUID)")
}

// session is everything a database-backed command needs.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	stores   *bootstrap.Stores
	services bootstrap.Services
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	stores, err := bootstrap.OpenStores(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		log:      log,
		stores:   stores,
		services: bootstrap.NewServices(stores.Users, stores.AuditLogs, cfg.Bulk, log),
	}, nil
}

func (s *session) Close() {
	s.stores.Close()
	_ = s.log.Sync()
}

func requireAdmin() (domainbulk.Admin, error) {
	id, err := uuid.Parse(adminID)
	if err != nil {
		return domainbulk.Admin{}, fmt.Errorf("--admin must be a valid UUID")
	}
	return domainbulk.Admin{ID: id.String()}, nil
}
