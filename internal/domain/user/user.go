package user

import (
	"net/mail"
	"strings"
	"time"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusPending   Status = "pending"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended, StatusPending:
		return true
	}
	return false
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type FlagType string

const (
	FlagManualReview FlagType = "manual_review"
	FlagDeletion     FlagType = "deletion"
)

type FlagSeverity string

const (
	SeverityLow    FlagSeverity = "low"
	SeverityMedium FlagSeverity = "medium"
	SeverityHigh   FlagSeverity = "high"
)

// Flag is a moderation annotation attached to a user record.
type Flag struct {
	ID        string
	Type      FlagType
	Severity  FlagSeverity
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}

type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  string
	Role         Role
	Status       Status
	StatusReason string
	Flags        []Flag
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// NewUser builds a user for creation. Role and status fall back to
// customer/active when empty.
func NewUser(id, firstName, lastName, email, phoneNumber string, role Role, status Status) (User, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, ErrInvalidEmail
	}

	if role == "" {
		role = RoleCustomer
	}
	if !role.Valid() {
		return User{}, ErrInvalidRole
	}
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return User{}, ErrInvalidStatus
	}

	return User{
		ID:          id,
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Email:       email,
		PhoneNumber: strings.TrimSpace(phoneNumber),
		Role:        role,
		Status:      status,
	}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CountFlags returns how many flags of the given type the user carries.
func (u User) CountFlags(t FlagType) int {
	n := 0
	for _, f := range u.Flags {
		if f.Type == t {
			n++
		}
	}
	return n
}
