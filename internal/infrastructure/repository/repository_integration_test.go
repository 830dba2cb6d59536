package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/repository"
)

func integrationDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	return dsn
}

func TestUserRepositoryIntegration(t *testing.T) {
	dsn := integrationDSN(t)
	ctx := context.Background()

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}

	repo := repository.NewUserRepository(db)
	if err := repo.AutoMigrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	email := "bulk-" + uuid.NewString()[:8] + "@example.com"
	candidate, err := domain.NewUser(uuid.NewString(), "Ivy", "Stone", email, "555-0199", domain.RoleCustomer, "")
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM user_flags WHERE user_id = ?", candidate.ID)
		db.Exec("DELETE FROM users WHERE id = ?", candidate.ID)
	})

	if _, err := repo.Create(ctx, candidate); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	dup := candidate
	dup.ID = uuid.NewString()
	if _, err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	status := domain.StatusInactive
	deletedAt := time.Now().UTC()
	reason := "closed account"
	err = repo.Update(ctx, candidate.ID, domain.Patch{
		Status:       &status,
		StatusReason: &reason,
		DeletedAt:    &deletedAt,
		Flag: &domain.Flag{
			ID:        uuid.NewString(),
			Type:      domain.FlagDeletion,
			Severity:  domain.SeverityHigh,
			Reason:    reason,
			CreatedBy: uuid.NewString(),
			CreatedAt: deletedAt,
		},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.FindByEmail(ctx, email)
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if got.Status != domain.StatusInactive || got.DeletedAt == nil {
		t.Fatalf("expected soft-deleted user, got %+v", got)
	}
	if got.CountFlags(domain.FlagDeletion) != 1 {
		t.Fatalf("expected one deletion flag, got %d", got.CountFlags(domain.FlagDeletion))
	}

	found, err := repo.Search(ctx, domain.Filter{Search: email, Status: domain.StatusInactive})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != candidate.ID {
		t.Fatalf("expected search to return the user, got %+v", found)
	}

	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuditLogRepositoryIntegration(t *testing.T) {
	dsn := integrationDSN(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	defer pool.Close()

	repo := repository.NewAuditLogRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema failed: %v", err)
	}

	resourceID := uuid.NewString()
	entry := audit.Entry{
		ID:         uuid.NewString(),
		AdminID:    uuid.NewString(),
		Action:     audit.ActionBulkStatusChange,
		ResourceID: &resourceID,
		Status:     audit.StatusSuccess,
		Changes:    json.RawMessage(`{"batchId":"b-1","row":1}`),
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.Append(ctx, entry); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	got, err := repo.List(ctx, audit.ListFilter{ResourceID: resourceID})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].ID != entry.ID || got[0].Status != audit.StatusSuccess {
		t.Fatalf("unexpected entry: %+v", got[0])
	}

	var payload map[string]any
	if err := json.Unmarshal(got[0].Changes, &payload); err != nil {
		t.Fatalf("changes are not json: %v", err)
	}
	if payload["batchId"] != "b-1" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}
