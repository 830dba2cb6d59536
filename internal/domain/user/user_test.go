package user_test

import (
	"testing"
	"time"

	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
)

func TestNewUserValid(t *testing.T) {
	t.Parallel()

	u, err := domain.NewUser(
		"a3f91a91-7fdd-43bf-bfd2-00bc02f6c53e",
		"Alice",
		"Smith",
		"  Alice@Example.com ",
		"1234567890",
		"",
		"",
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("unexpected email: %s", u.Email)
	}
	if u.Role != domain.RoleCustomer {
		t.Fatalf("expected default role customer, got %s", u.Role)
	}
	if u.Status != domain.StatusActive {
		t.Fatalf("expected default status active, got %s", u.Status)
	}
}

func TestNewUserInvalidEmail(t *testing.T) {
	t.Parallel()

	_, err := domain.NewUser("", "Alice", "Smith", "alice-at-example.com", "", "", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if err != domain.ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestNewUserInvalidRole(t *testing.T) {
	t.Parallel()

	_, err := domain.NewUser("", "Alice", "Smith", "alice@example.com", "", "superuser", "")
	if err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestPatchDiffSkipsUnchangedFields(t *testing.T) {
	t.Parallel()

	u := domain.User{FirstName: "Alice", LastName: "Smith", Status: domain.StatusActive}
	first := "Alice"
	last := "Jones"
	status := domain.StatusSuspended

	diff := domain.Patch{FirstName: &first, LastName: &last, Status: &status}.Diff(u)

	if _, ok := diff["first_name"]; ok {
		t.Fatal("did not expect unchanged first_name in diff")
	}
	if diff["last_name"].To != "Jones" {
		t.Fatalf("unexpected last_name delta: %#v", diff["last_name"])
	}
	if diff["status"].From != domain.StatusActive {
		t.Fatalf("unexpected status delta: %#v", diff["status"])
	}
}

func TestPatchApplyAppendsFlagWithoutSharingSlice(t *testing.T) {
	t.Parallel()

	original := domain.User{Flags: make([]domain.Flag, 0, 4)}
	deletedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	inactive := domain.StatusInactive
	patch := domain.Patch{
		Status:    &inactive,
		DeletedAt: &deletedAt,
		Flag:      &domain.Flag{Type: domain.FlagDeletion, Severity: domain.SeverityHigh},
	}

	got := patch.Apply(original)

	if len(original.Flags) != 0 {
		t.Fatal("expected original flags to stay untouched")
	}
	if got.CountFlags(domain.FlagDeletion) != 1 {
		t.Fatalf("expected one deletion flag, got %d", got.CountFlags(domain.FlagDeletion))
	}
	if got.Status != domain.StatusInactive || got.DeletedAt == nil {
		t.Fatalf("unexpected user after apply: %#v", got)
	}
}
