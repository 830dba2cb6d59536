package bulk_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	app "github.com/mohammadpnp/user-bulkops/internal/application/bulk"
	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
)

const (
	adminID = "0b6a3c55-1d7e-4a4c-9d3c-5c2f0c7e9a10"
	aliceID = "5b1f2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d"
	bobID   = "6c2a3d4e-5f60-4b7c-9d8e-0f1a2b3c4d5e"
	ghostID = "7d3b4e5f-6071-4c8d-ae9f-1a2b3c4d5e6f"
)

var testAdmin = domainbulk.Admin{ID: adminID, Email: "admin@example.com"}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]domain.User
	creates int
	updates int

	// failGetFor makes GetByID return an infrastructure error for one id.
	failGetFor string
	searchErr  error
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGetFor != "" && userID == f.failGetFor {
		return nil, errors.New("connection refused")
	}
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	f.creates++
	return &u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, userID string, patch domain.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	f.users[userID] = patch.Apply(u)
	f.updates++
	return nil
}

func (f *fakeUserRepo) Search(ctx context.Context, filter domain.Filter) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.searchErr != nil {
		return nil, f.searchErr
	}

	out := make([]domain.User, 0)
	for _, u := range f.users {
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Search != "" {
			haystack := strings.ToLower(u.FirstName + " " + u.LastName + " " + u.Email)
			if !strings.Contains(haystack, strings.ToLower(filter.Search)) {
				continue
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeUserRepo) get(id string) (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	return u, ok
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type fakeAuditRepo struct {
	mu        sync.Mutex
	entries   []audit.Entry
	appendErr error
}

func (f *fakeAuditRepo) Append(ctx context.Context, entry audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]audit.Entry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeAuditRepo) summaries() []audit.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]audit.Entry, 0)
	for _, e := range f.entries {
		if e.ResourceID == nil && !strings.Contains(string(e.Changes), `"row":`) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeAuditRepo) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type countingProgress struct {
	n int
}

func (p *countingProgress) Add(num int) error {
	p.n += num
	return nil
}

type engine struct {
	update   app.BulkUpdateUsers
	status   app.BulkChangeUserStatus
	remove   app.BulkDeleteUsers
	importer app.ImportUsersFromCSV
	export   app.ExportUsersToCSV
}

func newEngine(users *fakeUserRepo, audits *fakeAuditRepo, limits app.Limits) engine {
	recorder := app.NewAuditRecorder(audits, nil)
	coordinator := app.NewCoordinator(app.NewValidator(), app.NewApplier(users), recorder, nil)
	return engine{
		update:   app.NewBulkUpdateUsers(coordinator, limits),
		status:   app.NewBulkChangeUserStatus(coordinator, limits),
		remove:   app.NewBulkDeleteUsers(coordinator, limits),
		importer: app.NewImportUsersFromCSV(coordinator, limits),
		export:   app.NewExportUsersToCSV(users, recorder, limits),
	}
}

func alice() domain.User {
	return domain.User{
		ID:        aliceID,
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Role:      domain.RoleCustomer,
		Status:    domain.StatusActive,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func bob() domain.User {
	return domain.User{
		ID:        bobID,
		FirstName: "Bob",
		LastName:  "Jones",
		Email:     "bob@example.com",
		Role:      domain.RoleStaff,
		Status:    domain.StatusActive,
		CreatedAt: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}
