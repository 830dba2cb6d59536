package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/repository"
)

const testUserID = "5b1f2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"

var userColumns = []string{
	"id", "first_name", "last_name", "email", "phone_number", "role", "status",
	"status_reason", "deleted_at", "created_at", "updated_at",
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestUserRepositoryGetByIDMalformedID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	u, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetByIDNotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows(userColumns))

	u, err := repo.GetByID(context.Background(), testUserID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Nil(t, u)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetByIDWithFlags(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users"`)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(testUserID, "Alice", "Smith", "alice@example.com", "", "customer", "suspended", "spam", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "user_flags"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "severity", "reason", "created_by", "created_at"}).
			AddRow("2f0c7e9a-1d7e-4a4c-9d3c-5c2f0c7e9a10", testUserID, "manual_review", "medium", "spam", "0b6a3c55-1d7e-4a4c-9d3c-5c2f0c7e9a10", now))

	u, err := repo.GetByID(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuspended, u.Status)
	assert.Equal(t, 1, u.CountFlags(domain.FlagManualReview))
	assert.Nil(t, u.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateWritesFlagInSameTransaction(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	status := domain.StatusSuspended
	reason := "chargeback"
	patch := domain.Patch{
		Status:       &status,
		StatusReason: &reason,
		Flag: &domain.Flag{
			ID:        "2f0c7e9a-1d7e-4a4c-9d3c-5c2f0c7e9a10",
			Type:      domain.FlagManualReview,
			Severity:  domain.SeverityMedium,
			Reason:    reason,
			CreatedBy: "0b6a3c55-1d7e-4a4c-9d3c-5c2f0c7e9a10",
			CreatedAt: time.Now().UTC(),
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "user_flags"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), testUserID, patch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateRollsBackWhenFlagFails(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	status := domain.StatusInactive
	now := time.Now().UTC()
	patch := domain.Patch{
		Status:    &status,
		DeletedAt: &now,
		Flag:      &domain.Flag{ID: "2f0c7e9a-1d7e-4a4c-9d3c-5c2f0c7e9a10", Type: domain.FlagDeletion, Severity: domain.SeverityHigh},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "user_flags"`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), testUserID, patch)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryUpdateMissingUser(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	name := "Ghost"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), testUserID, domain.Patch{FirstName: &name})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	u, err := domain.NewUser(testUserID, "Alice", "Smith", "alice@example.com", "", "", "")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), u)
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateWritesFlagsInSameTransaction(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	u, err := domain.NewUser(testUserID, "Alice", "Smith", "alice@example.com", "", "", domain.StatusSuspended)
	require.NoError(t, err)
	u.Flags = []domain.Flag{{
		ID:        "2f0c7e9a-1d7e-4a4c-9d3c-5c2f0c7e9a10",
		Type:      domain.FlagManualReview,
		Severity:  domain.SeverityMedium,
		Reason:    "Suspended by CSV import",
		CreatedBy: "0b6a3c55-1d7e-4a4c-9d3c-5c2f0c7e9a10",
		CreatedAt: time.Now().UTC(),
	}}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "user_flags"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, 1, created.CountFlags(domain.FlagManualReview))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositorySearch(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewUserRepository(gormDB)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE status = $1 AND (LOWER(first_name) LIKE $2`)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(testUserID, "Alice", "Smith", "alice@example.com", "", "customer", "active", "", nil, now, now))

	users, err := repo.Search(context.Background(), domain.Filter{
		Status:      domain.StatusActive,
		Search:      "ali",
		CreatedFrom: &from,
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
