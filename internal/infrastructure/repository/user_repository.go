package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/db/models"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// AutoMigrate creates or updates the users and user_flags tables.
func (r *UserRepository) AutoMigrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.User{}, &models.UserFlag{}); err != nil {
		return fmt.Errorf("auto migrate users: %w", err)
	}
	return nil
}

// GetByID never sends a malformed id to Postgres; it is reported as not found.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrUserNotFound
	}

	var row models.User
	err := r.withFlags(ctx).First(&row, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return toDomain(row), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row models.User
	err := r.withFlags(ctx).First(&row, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return toDomain(row), nil
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	row := models.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		Role:         string(u.Role),
		Status:       string(u.Status),
		StatusReason: u.StatusReason,
	}

	// Flags are inserted after the user row so a failure rolls back both.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		for _, f := range u.Flags {
			flag := flagRow(row.ID, f)
			if err := tx.Create(&flag).Error; err != nil {
				return fmt.Errorf("insert user flag: %w", err)
			}
			row.Flags = append(row.Flags, flag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toDomain(row), nil
}

// Update writes the patch and its optional flag in one transaction.
func (r *UserRepository) Update(ctx context.Context, userID string, patch domain.Patch) error {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrUserNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).Where("id = ?", userID).Updates(patchColumns(patch))
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return domain.ErrEmailTaken
			}
			return fmt.Errorf("update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrUserNotFound
		}

		if patch.Flag != nil {
			flag := flagRow(userID, *patch.Flag)
			if err := tx.Create(&flag).Error; err != nil {
				return fmt.Errorf("insert user flag: %w", err)
			}
		}
		return nil
	})
}

func (r *UserRepository) Search(ctx context.Context, filter domain.Filter) ([]domain.User, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Role != "" {
		query = query.Where("role = ?", string(filter.Role))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where(
			"(LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ?)",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom.UTC())
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo.UTC())
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []models.User
	if err := query.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *toDomain(row))
	}
	return users, nil
}

func (r *UserRepository) withFlags(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Flags", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

func flagRow(userID string, f domain.Flag) models.UserFlag {
	return models.UserFlag{
		ID:        f.ID,
		UserID:    userID,
		Type:      string(f.Type),
		Severity:  string(f.Severity),
		Reason:    f.Reason,
		CreatedBy: f.CreatedBy,
		CreatedAt: f.CreatedAt,
	}
}

func patchColumns(p domain.Patch) map[string]any {
	cols := map[string]any{"updated_at": time.Now().UTC()}
	if p.FirstName != nil {
		cols["first_name"] = *p.FirstName
	}
	if p.LastName != nil {
		cols["last_name"] = *p.LastName
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.PhoneNumber != nil {
		cols["phone_number"] = *p.PhoneNumber
	}
	if p.Role != nil {
		cols["role"] = string(*p.Role)
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.StatusReason != nil {
		cols["status_reason"] = *p.StatusReason
	}
	if p.DeletedAt != nil {
		cols["deleted_at"] = p.DeletedAt.UTC()
	}
	return cols
}

func toDomain(row models.User) *domain.User {
	flags := make([]domain.Flag, 0, len(row.Flags))
	for _, f := range row.Flags {
		flags = append(flags, domain.Flag{
			ID:        f.ID,
			Type:      domain.FlagType(f.Type),
			Severity:  domain.FlagSeverity(f.Severity),
			Reason:    f.Reason,
			CreatedBy: f.CreatedBy,
			CreatedAt: f.CreatedAt,
		})
	}

	return &domain.User{
		ID:           row.ID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		PhoneNumber:  row.PhoneNumber,
		Role:         domain.Role(row.Role),
		Status:       domain.Status(row.Status),
		StatusReason: row.StatusReason,
		Flags:        flags,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
