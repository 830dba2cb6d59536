package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
)

type GetUserByIDInput struct {
	ID string
}

type GetUserFlagOutput struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Reason    string    `json:"reason"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type GetUserByIDOutput struct {
	ID           string              `json:"id"`
	FirstName    string              `json:"firstName"`
	LastName     string              `json:"lastName"`
	Email        string              `json:"email"`
	PhoneNumber  string              `json:"phoneNumber"`
	Role         string              `json:"role"`
	Status       string              `json:"status"`
	StatusReason string              `json:"statusReason,omitempty"`
	Flags        []GetUserFlagOutput `json:"flags"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	DeletedAt    *time.Time          `json:"deletedAt,omitempty"`
}

type GetUserByID interface {
	Execute(ctx context.Context, in GetUserByIDInput) (GetUserByIDOutput, error)
}

type getUserByID struct {
	repo domain.UserQueryRepository
}

func NewGetUserByID(repo domain.UserQueryRepository) GetUserByID {
	return &getUserByID{repo: repo}
}

func (uc *getUserByID) Execute(ctx context.Context, in GetUserByIDInput) (GetUserByIDOutput, error) {
	if _, err := uuid.Parse(in.ID); err != nil {
		return GetUserByIDOutput{}, ErrInvalidUserID
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return GetUserByIDOutput{}, ErrUserNotFound
		}
		return GetUserByIDOutput{}, fmt.Errorf("%w: %v", ErrGetUserByID, err)
	}

	flags := make([]GetUserFlagOutput, 0, len(u.Flags))
	for _, f := range u.Flags {
		flags = append(flags, GetUserFlagOutput{
			ID:        f.ID,
			Type:      string(f.Type),
			Severity:  string(f.Severity),
			Reason:    f.Reason,
			CreatedBy: f.CreatedBy,
			CreatedAt: f.CreatedAt,
		})
	}

	return GetUserByIDOutput{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		Role:         string(u.Role),
		Status:       string(u.Status),
		StatusReason: u.StatusReason,
		Flags:        flags,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		DeletedAt:    u.DeletedAt,
	}, nil
}
