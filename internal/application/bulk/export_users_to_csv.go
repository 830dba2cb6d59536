package bulk

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/csvcodec"
)

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type ExportUsersToCSVInput struct {
	Admin       domainbulk.Admin
	Status      string
	Role        string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Fields      []string
	FileName    string
}

type ExportUsersToCSVOutput struct {
	FileName string
	Content  []byte
	Count    int
}

type ExportUsersToCSV interface {
	Execute(ctx context.Context, in ExportUsersToCSVInput) (ExportUsersToCSVOutput, error)
}

type exportUsersToCSV struct {
	users    domain.UserRepository
	recorder *AuditRecorder
	limits   Limits
}

func NewExportUsersToCSV(users domain.UserRepository, recorder *AuditRecorder, limits Limits) ExportUsersToCSV {
	return &exportUsersToCSV{users: users, recorder: recorder, limits: limits.withDefaults()}
}

func (uc *exportUsersToCSV) Execute(ctx context.Context, in ExportUsersToCSVInput) (ExportUsersToCSVOutput, error) {
	filter, err := uc.filter(in)
	if err != nil {
		return ExportUsersToCSVOutput{}, err
	}
	if err := csvcodec.ValidateFields(in.Fields); err != nil {
		return ExportUsersToCSVOutput{}, fmt.Errorf("%w: %v", ErrInvalidExportFilter, err)
	}

	users, err := uc.users.Search(ctx, filter)
	if err != nil {
		return ExportUsersToCSVOutput{}, fmt.Errorf("%w: %v", ErrExportUsers, err)
	}
	if len(users) == 0 {
		return ExportUsersToCSVOutput{}, ErrNoRecordsFound
	}

	content, err := csvcodec.Serialize(users, in.Fields)
	if err != nil {
		return ExportUsersToCSVOutput{}, fmt.Errorf("%w: %v", ErrExportUsers, err)
	}

	fileName := SanitizeFileName(in.FileName, uc.limits.ExportFileName)

	result := domainbulk.NewBatchResult()
	result.TotalProcessed = len(users)
	result.TotalSuccessful = len(users)
	uc.recorder.RecordSummary(ctx, in.Admin.ID, audit.ActionExport, uuid.NewString(), result, audit.StatusSuccess,
		map[string]any{"fileName": fileName, "filters": filterPayload(filter)})

	return ExportUsersToCSVOutput{FileName: fileName, Content: content, Count: len(users)}, nil
}

func (uc *exportUsersToCSV) filter(in ExportUsersToCSVInput) (domain.Filter, error) {
	filter := domain.Filter{
		Search:      strings.TrimSpace(in.Search),
		CreatedFrom: in.CreatedFrom,
		CreatedTo:   in.CreatedTo,
		Limit:       uc.limits.MaxExportRows,
	}

	if s := strings.ToLower(strings.TrimSpace(in.Status)); s != "" {
		filter.Status = domain.Status(s)
		if !filter.Status.Valid() {
			return domain.Filter{}, fmt.Errorf("%w: unknown status %q", ErrInvalidExportFilter, in.Status)
		}
	}
	if r := strings.ToLower(strings.TrimSpace(in.Role)); r != "" {
		filter.Role = domain.Role(r)
		if !filter.Role.Valid() {
			return domain.Filter{}, fmt.Errorf("%w: unknown role %q", ErrInvalidExportFilter, in.Role)
		}
	}
	if in.CreatedFrom != nil && in.CreatedTo != nil && in.CreatedFrom.After(*in.CreatedTo) {
		return domain.Filter{}, fmt.Errorf("%w: createdFrom is after createdTo", ErrInvalidExportFilter)
	}
	return filter, nil
}

// SanitizeFileName strips directories and unsafe characters and forces a
// .csv extension. An empty result falls back to def.
func SanitizeFileName(name, def string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = unsafeFileNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	if name == "" {
		return def
	}
	return name + ".csv"
}

func filterPayload(f domain.Filter) map[string]any {
	out := map[string]any{}
	if f.Status != "" {
		out["status"] = string(f.Status)
	}
	if f.Role != "" {
		out["role"] = string(f.Role)
	}
	if f.Search != "" {
		out["search"] = f.Search
	}
	if f.CreatedFrom != nil {
		out["createdFrom"] = f.CreatedFrom.UTC().Format(time.RFC3339)
	}
	if f.CreatedTo != nil {
		out["createdTo"] = f.CreatedTo.UTC().Format(time.RFC3339)
	}
	return out
}
