package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/audit"
)

const maxListLimit = 1000

type ListAuditLogsInput struct {
	AdminID    string
	Action     string
	ResourceID string
	Limit      int
}

type AuditLogOutput struct {
	ID         string          `json:"id"`
	AdminID    string          `json:"adminId"`
	Action     string          `json:"action"`
	ResourceID *string         `json:"resourceId"`
	Status     string          `json:"status"`
	Changes    json.RawMessage `json:"changes"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ListAuditLogsOutput struct {
	Entries []AuditLogOutput `json:"entries"`
}

type ListAuditLogs interface {
	Execute(ctx context.Context, in ListAuditLogsInput) (ListAuditLogsOutput, error)
}

type listAuditLogs struct {
	repo domain.Repository
}

func NewListAuditLogs(repo domain.Repository) ListAuditLogs {
	return &listAuditLogs{repo: repo}
}

func (uc *listAuditLogs) Execute(ctx context.Context, in ListAuditLogsInput) (ListAuditLogsOutput, error) {
	if in.Limit < 0 || in.Limit > maxListLimit {
		return ListAuditLogsOutput{}, fmt.Errorf("%w: limit must be between 0 and %d", ErrInvalidAuditFilter, maxListLimit)
	}
	if in.AdminID != "" {
		if _, err := uuid.Parse(in.AdminID); err != nil {
			return ListAuditLogsOutput{}, fmt.Errorf("%w: adminId must be a valid UUID", ErrInvalidAuditFilter)
		}
	}

	entries, err := uc.repo.List(ctx, domain.ListFilter{
		AdminID:    in.AdminID,
		Action:     in.Action,
		ResourceID: in.ResourceID,
		Limit:      in.Limit,
	})
	if err != nil {
		return ListAuditLogsOutput{}, fmt.Errorf("%w: %v", ErrListAuditLogs, err)
	}

	out := ListAuditLogsOutput{Entries: make([]AuditLogOutput, 0, len(entries))}
	for _, e := range entries {
		changes := e.Changes
		if len(changes) == 0 {
			changes = json.RawMessage("{}")
		}
		out.Entries = append(out.Entries, AuditLogOutput{
			ID:         e.ID,
			AdminID:    e.AdminID,
			Action:     e.Action,
			ResourceID: e.ResourceID,
			Status:     string(e.Status),
			Changes:    changes,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out, nil
}
