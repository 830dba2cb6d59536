package bulk

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	"go.uber.org/zap"
)

// AuditRecorder writes per-row and per-batch audit entries. Writes are
// best-effort: a failed append is logged and the batch carries on, so a
// committed mutation can exist without its audit entry.
type AuditRecorder struct {
	repo  audit.Repository
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

func NewAuditRecorder(repo audit.Repository, log *zap.Logger) *AuditRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditRecorder{
		repo:  repo,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (r *AuditRecorder) RecordRow(ctx context.Context, adminID, action, batchID string, o domainbulk.RowOutcome) {
	payload := map[string]any{
		"batchId": batchID,
		"row":     o.Row,
	}
	if o.Email != "" {
		payload["email"] = o.Email
	}

	var status audit.Status
	switch o.Tag {
	case domainbulk.Succeeded:
		status = audit.StatusSuccess
		payload["action"] = o.Action
		if len(o.Changes) > 0 {
			payload["changes"] = o.Changes
		}
	case domainbulk.Failed:
		status = audit.StatusFailure
		payload["error"] = o.Error
	case domainbulk.Skipped:
		status = audit.StatusSkipped
		payload["reason"] = o.Reason
	}

	var resourceID *string
	if o.UserID != "" {
		id := o.UserID
		resourceID = &id
	}

	r.append(ctx, adminID, action, resourceID, status, payload,
		zap.String("batch_id", batchID), zap.Int("row", o.Row))
}

// RecordSummary writes the single batch-level entry. extra is merged into
// the payload next to the counts.
func (r *AuditRecorder) RecordSummary(ctx context.Context, adminID, action, batchID string, result *domainbulk.BatchResult, status audit.Status, extra map[string]any) {
	payload := result.Counts()
	payload["batchId"] = batchID
	for k, v := range extra {
		payload[k] = v
	}

	r.append(ctx, adminID, action, nil, status, payload, zap.String("batch_id", batchID))
}

func (r *AuditRecorder) append(ctx context.Context, adminID, action string, resourceID *string, status audit.Status, payload map[string]any, fields ...zap.Field) {
	fields = append(fields, zap.String("admin_id", adminID), zap.String("action", action))

	changes, err := json.Marshal(payload)
	if err != nil {
		r.log.Error("encode audit payload", append(fields, zap.Error(err))...)
		return
	}

	entry := audit.Entry{
		ID:         r.newID(),
		AdminID:    adminID,
		Action:     action,
		ResourceID: resourceID,
		Status:     status,
		Changes:    changes,
		CreatedAt:  r.now().UTC(),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		r.log.Error("append audit entry", append(fields, zap.Error(err))...)
	}
}

func summaryStatus(d domainbulk.Decision) audit.Status {
	switch d.Status {
	case domainbulk.StatusFull:
		return audit.StatusSuccess
	case domainbulk.StatusPartial:
		return audit.StatusPartial
	case domainbulk.StatusPreview:
		return audit.StatusPreview
	default:
		return audit.StatusFailure
	}
}
