package bulk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
)

const (
	SkipReasonExistingUser = "existing user (update-existing not requested)"
	SkipReasonAlreadyDone  = "user already deleted"

	msgEmailTaken  = "Email already in use"
	msgUserDeleted = "User is deleted"

	defaultSuspendReason = "Suspended by bulk status change"
	defaultDeleteReason  = "Deleted by bulk operation"
	importSuspendReason  = "Suspended by CSV import"
)

// ApplyOptions only affect import rows.
type ApplyOptions struct {
	DryRun         bool
	UpdateExisting bool

	// planned holds the users a dry run would have written so far, keyed by
	// email, so later rows of the same file see them.
	planned map[string]domain.User
}

func (o ApplyOptions) plan(u domain.User) {
	if o.planned != nil {
		o.planned[u.Email] = u
	}
}

// Applier performs the store mutation for one validated command. Row-level
// conditions come back as outcomes; a non-nil error is an infrastructure fault.
type Applier struct {
	users domain.UserRepository
	now   func() time.Time
	newID func() string
}

func NewApplier(users domain.UserRepository) *Applier {
	return &Applier{
		users: users,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (a *Applier) Apply(ctx context.Context, admin domainbulk.Admin, cmd domainbulk.Command, opts ApplyOptions) (domainbulk.RowOutcome, error) {
	switch c := cmd.(type) {
	case domainbulk.UpdateCommand:
		return a.applyUpdate(ctx, c)
	case domainbulk.StatusChangeCommand:
		return a.applyStatusChange(ctx, admin, c)
	case domainbulk.SoftDeleteCommand:
		return a.applySoftDelete(ctx, admin, c)
	case domainbulk.ImportRowCommand:
		return a.applyImportRow(ctx, admin, c, opts)
	default:
		return domainbulk.RowOutcome{}, fmt.Errorf("unsupported command %T", cmd)
	}
}

func (a *Applier) applyUpdate(ctx context.Context, c domainbulk.UpdateCommand) (domainbulk.RowOutcome, error) {
	current, outcome, err := a.lookup(ctx, c.UserID)
	if current == nil {
		return outcome, err
	}

	patch := patchFromFields(c.Fields)
	if patch.Email != nil && *patch.Email != current.Email {
		taken, err := a.emailTakenByOther(ctx, *patch.Email, current.ID)
		if err != nil {
			return domainbulk.RowOutcome{}, err
		}
		if taken {
			return domainbulk.Failure(0, c.UserID, msgEmailTaken), nil
		}
	}

	changes := deltas(patch.Diff(*current))
	if err := a.update(ctx, current.ID, patch); err != nil {
		return a.rowFailureOrFault(c.UserID, err)
	}
	return domainbulk.Success(0, current.ID, domainbulk.ActionUpdated, changes), nil
}

func (a *Applier) applyStatusChange(ctx context.Context, admin domainbulk.Admin, c domainbulk.StatusChangeCommand) (domainbulk.RowOutcome, error) {
	current, outcome, err := a.lookup(ctx, c.UserID)
	if current == nil {
		return outcome, err
	}
	if current.DeletedAt != nil {
		return domainbulk.Failure(0, current.ID, msgUserDeleted), nil
	}

	status := domain.Status(c.NewStatus)
	reason := c.Reason
	patch := domain.Patch{Status: &status, StatusReason: &reason}
	if status == domain.StatusSuspended {
		patch.Flag = a.flag(admin, domain.FlagManualReview, domain.SeverityMedium, reasonOr(c.Reason, defaultSuspendReason))
	}

	changes := deltas(patch.Diff(*current))
	if err := a.update(ctx, current.ID, patch); err != nil {
		return a.rowFailureOrFault(c.UserID, err)
	}
	if patch.Flag != nil {
		changes["flag"] = flagChange(*patch.Flag)
	}
	return domainbulk.Success(0, current.ID, domainbulk.ActionStatusChanged, changes), nil
}

func (a *Applier) applySoftDelete(ctx context.Context, admin domainbulk.Admin, c domainbulk.SoftDeleteCommand) (domainbulk.RowOutcome, error) {
	current, outcome, err := a.lookup(ctx, c.UserID)
	if current == nil {
		return outcome, err
	}
	if current.DeletedAt != nil {
		return domainbulk.Skip(0, current.ID, SkipReasonAlreadyDone), nil
	}

	status := domain.StatusInactive
	reason := reasonOr(c.Reason, defaultDeleteReason)
	deletedAt := a.now().UTC()
	patch := domain.Patch{
		Status:       &status,
		StatusReason: &reason,
		DeletedAt:    &deletedAt,
		Flag:         a.flag(admin, domain.FlagDeletion, domain.SeverityHigh, reason),
	}

	changes := deltas(patch.Diff(*current))
	if err := a.update(ctx, current.ID, patch); err != nil {
		return a.rowFailureOrFault(c.UserID, err)
	}
	changes["flag"] = flagChange(*patch.Flag)
	return domainbulk.Success(0, current.ID, domainbulk.ActionDeleted, changes), nil
}

func (a *Applier) applyImportRow(ctx context.Context, admin domainbulk.Admin, c domainbulk.ImportRowCommand, opts ApplyOptions) (domainbulk.RowOutcome, error) {
	fields := c.RawFields
	email := fields["email"]

	existing, err := a.findForImport(ctx, email, opts)
	if err != nil {
		return domainbulk.RowOutcome{}, err
	}

	if existing != nil {
		if !opts.UpdateExisting {
			return withEmail(domainbulk.Skip(0, existing.ID, SkipReasonExistingUser), email), nil
		}

		patch := patchFromImport(fields)
		if patch.Status != nil && *patch.Status == domain.StatusSuspended && existing.Status != domain.StatusSuspended {
			patch.Flag = a.flag(admin, domain.FlagManualReview, domain.SeverityMedium, importSuspendReason)
		}
		changes := deltas(patch.Diff(*existing))
		if patch.Flag != nil {
			changes["flag"] = flagChange(*patch.Flag)
		}
		if opts.DryRun {
			opts.plan(patch.Apply(*existing))
			return withEmail(domainbulk.Success(0, existing.ID, domainbulk.ActionWouldUpdate, changes), email), nil
		}
		if err := a.update(ctx, existing.ID, patch); err != nil {
			outcome, err := a.rowFailureOrFault(existing.ID, err)
			return withEmail(outcome, email), err
		}
		return withEmail(domainbulk.Success(0, existing.ID, domainbulk.ActionUpdated, changes), email), nil
	}

	candidate, err := domain.NewUser(
		"",
		fields["first_name"],
		fields["last_name"],
		email,
		fields["phone_number"],
		domain.Role(fields["role"]),
		domain.Status(fields["status"]),
	)
	if err != nil {
		return withEmail(domainbulk.Failure(0, "", importMessage(err)), email), nil
	}
	if candidate.Status == domain.StatusSuspended {
		candidate.Flags = []domain.Flag{*a.flag(admin, domain.FlagManualReview, domain.SeverityMedium, importSuspendReason)}
	}

	changes := map[string]any{
		"first_name":   candidate.FirstName,
		"last_name":    candidate.LastName,
		"email":        candidate.Email,
		"phone_number": candidate.PhoneNumber,
		"role":         string(candidate.Role),
		"status":       string(candidate.Status),
	}
	if len(candidate.Flags) > 0 {
		changes["flag"] = flagChange(candidate.Flags[0])
	}
	if opts.DryRun {
		opts.plan(candidate)
		return withEmail(domainbulk.Success(0, "", domainbulk.ActionWouldCreate, changes), email), nil
	}

	candidate.ID = a.newID()
	created, err := a.users.Create(ctx, candidate)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return withEmail(domainbulk.Failure(0, "", msgEmailTaken), email), nil
		}
		return domainbulk.RowOutcome{}, fmt.Errorf("create user: %w", err)
	}
	return withEmail(domainbulk.Success(0, created.ID, domainbulk.ActionCreated, changes), email), nil
}

// findForImport prefers what an earlier dry-run row planned over the store.
func (a *Applier) findForImport(ctx context.Context, email string, opts ApplyOptions) (*domain.User, error) {
	if planned, ok := opts.planned[email]; ok {
		return &planned, nil
	}
	existing, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return existing, nil
}

// lookup returns the current user, or a ready outcome/error when the row
// cannot continue.
func (a *Applier) lookup(ctx context.Context, userID string) (*domain.User, domainbulk.RowOutcome, error) {
	current, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domainbulk.Failure(0, userID, domainbulk.MsgUserNotFound), nil
		}
		return nil, domainbulk.RowOutcome{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return current, domainbulk.RowOutcome{}, nil
}

func (a *Applier) update(ctx context.Context, userID string, patch domain.Patch) error {
	if patch.Empty() {
		return nil
	}
	return a.users.Update(ctx, userID, patch)
}

func (a *Applier) emailTakenByOther(ctx context.Context, email, userID string) (bool, error) {
	other, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find user by email: %w", err)
	}
	return other.ID != userID, nil
}

func (a *Applier) rowFailureOrFault(userID string, err error) (domainbulk.RowOutcome, error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return domainbulk.Failure(0, userID, domainbulk.MsgUserNotFound), nil
	case errors.Is(err, domain.ErrEmailTaken):
		return domainbulk.Failure(0, userID, msgEmailTaken), nil
	default:
		return domainbulk.RowOutcome{}, fmt.Errorf("update user %s: %w", userID, err)
	}
}

func (a *Applier) flag(admin domainbulk.Admin, t domain.FlagType, severity domain.FlagSeverity, reason string) *domain.Flag {
	return &domain.Flag{
		ID:        a.newID(),
		Type:      t,
		Severity:  severity,
		Reason:    reason,
		CreatedBy: admin.ID,
		CreatedAt: a.now().UTC(),
	}
}

func patchFromFields(fields map[string]any) domain.Patch {
	var patch domain.Patch
	str := func(key string) *string {
		v, ok := fields[key].(string)
		if !ok {
			return nil
		}
		return &v
	}
	patch.FirstName = str("first_name")
	patch.LastName = str("last_name")
	patch.Email = str("email")
	patch.PhoneNumber = str("phone_number")
	if role := str("role"); role != nil {
		r := domain.Role(*role)
		patch.Role = &r
	}
	return patch
}

// patchFromImport only carries non-blank cells; blanks never erase data.
func patchFromImport(fields map[string]string) domain.Patch {
	var patch domain.Patch
	str := func(key string) *string {
		v := fields[key]
		if v == "" {
			return nil
		}
		return &v
	}
	patch.FirstName = str("first_name")
	patch.LastName = str("last_name")
	patch.PhoneNumber = str("phone_number")
	if role := str("role"); role != nil {
		r := domain.Role(*role)
		patch.Role = &r
	}
	if status := str("status"); status != nil {
		s := domain.Status(*status)
		patch.Status = &s
	}
	return patch
}

func deltas(diff map[string]domain.Delta) map[string]any {
	out := make(map[string]any, len(diff))
	for field, d := range diff {
		out[field] = d
	}
	return out
}

func flagChange(f domain.Flag) map[string]any {
	return map[string]any{
		"id":       f.ID,
		"type":     string(f.Type),
		"severity": string(f.Severity),
		"reason":   f.Reason,
	}
}

func withEmail(o domainbulk.RowOutcome, email string) domainbulk.RowOutcome {
	o.Email = email
	return o
}

func reasonOr(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}

func importMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Invalid email format"
	case errors.Is(err, domain.ErrInvalidRole):
		return "Invalid role"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid status"
	default:
		return err.Error()
	}
}
