package audit

import (
	"context"
	"encoding/json"
	"time"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusSkipped Status = "skipped"
	StatusPartial Status = "partial"
	StatusPreview Status = "preview"
	StatusAborted Status = "aborted"
)

const (
	ActionBulkUpdate       = "users.bulk_update"
	ActionBulkStatusChange = "users.bulk_status_change"
	ActionBulkDelete       = "users.bulk_delete"
	ActionImport           = "users.import"
	ActionImportDryRun     = "users.import_dry_run"
	ActionExport           = "users.export"
)

// Entry is an immutable audit record. ResourceID is nil for batch summaries.
type Entry struct {
	ID         string
	AdminID    string
	Action     string
	ResourceID *string
	Status     Status
	Changes    json.RawMessage
	CreatedAt  time.Time
}

type ListFilter struct {
	AdminID    string
	Action     string
	ResourceID string
	Limit      int
}

// Repository is append-only: there is no update or delete path.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}
