package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mohammadpnp/user-bulkops/internal/config"
	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Stores holds both database handles: gorm for user records and a pgx pool
// for the audit log.
type Stores struct {
	DB        *gorm.DB
	Pool      *pgxpool.Pool
	Users     *repository.UserRepository
	AuditLogs *repository.AuditLogRepository
}

func OpenStores(ctx context.Context, cfg config.DatabaseConfig) (*Stores, error) {
	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	return &Stores{
		DB:        db,
		Pool:      pool,
		Users:     repository.NewUserRepository(db),
		AuditLogs: repository.NewAuditLogRepository(pool),
	}, nil
}

// Migrate creates the users, user_flags and audit_logs tables.
func (s *Stores) Migrate(ctx context.Context) error {
	if err := s.Users.AutoMigrate(ctx); err != nil {
		return err
	}
	return s.AuditLogs.EnsureSchema(ctx)
}

func (s *Stores) Close() {
	s.Pool.Close()
	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
