package user

import (
	"context"
	"time"
)

// Filter narrows a user search. Zero values mean "no constraint".
type Filter struct {
	Status      Status
	Role        Role
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
}

type UserQueryRepository interface {
	GetByID(ctx context.Context, userID string) (*User, error)
}

// UserRepository is the record store the bulk engine mutates. GetByID and
// FindByEmail return ErrUserNotFound when nothing matches; any other error is
// an infrastructure fault.
type UserRepository interface {
	UserQueryRepository
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u User) (*User, error)
	Update(ctx context.Context, userID string, patch Patch) error
	Search(ctx context.Context, filter Filter) ([]User, error)
}
