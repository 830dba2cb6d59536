package user

import "time"

// Patch is a field-level update for one user. Nil fields are left untouched.
// A non-nil Flag is appended in the same store transaction as the field changes.
type Patch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PhoneNumber  *string
	Role         *Role
	Status       *Status
	StatusReason *string
	DeletedAt    *time.Time
	Flag         *Flag
}

func (p Patch) Empty() bool {
	return p.FirstName == nil &&
		p.LastName == nil &&
		p.Email == nil &&
		p.PhoneNumber == nil &&
		p.Role == nil &&
		p.Status == nil &&
		p.StatusReason == nil &&
		p.DeletedAt == nil &&
		p.Flag == nil
}

// Delta is one field change, recorded in audit payloads.
type Delta struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// Diff returns the field deltas the patch would produce against u.
// Fields that would not change are omitted.
func (p Patch) Diff(u User) map[string]Delta {
	out := make(map[string]Delta)
	diffString := func(name string, current string, next *string) {
		if next != nil && *next != current {
			out[name] = Delta{From: current, To: *next}
		}
	}

	diffString("first_name", u.FirstName, p.FirstName)
	diffString("last_name", u.LastName, p.LastName)
	diffString("email", u.Email, p.Email)
	diffString("phone_number", u.PhoneNumber, p.PhoneNumber)
	if p.Role != nil && *p.Role != u.Role {
		out["role"] = Delta{From: u.Role, To: *p.Role}
	}
	if p.Status != nil && *p.Status != u.Status {
		out["status"] = Delta{From: u.Status, To: *p.Status}
	}
	diffString("status_reason", u.StatusReason, p.StatusReason)
	if p.DeletedAt != nil && u.DeletedAt == nil {
		out["deleted_at"] = Delta{From: nil, To: p.DeletedAt.UTC()}
	}
	return out
}

// Apply returns a copy of u with the patch applied. Dry-run imports use it to
// track the state earlier rows of the same file would have produced.
func (p Patch) Apply(u User) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.StatusReason != nil {
		u.StatusReason = *p.StatusReason
	}
	if p.DeletedAt != nil {
		deletedAt := *p.DeletedAt
		u.DeletedAt = &deletedAt
	}
	if p.Flag != nil {
		flags := make([]Flag, 0, len(u.Flags)+1)
		flags = append(flags, u.Flags...)
		u.Flags = append(flags, *p.Flag)
	}
	return u
}
