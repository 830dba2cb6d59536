package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
)

const (
	defaultAuditListLimit = 100
	maxAuditListLimit     = 1000
)

const auditSchemaSQL = `
CREATE TABLE IF NOT EXISTS audit_logs (
    id UUID PRIMARY KEY,
    admin_id TEXT NOT NULL,
    action TEXT NOT NULL,
    resource_id TEXT,
    status TEXT NOT NULL,
    changes JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS audit_logs_resource_id_idx ON audit_logs (resource_id);
CREATE INDEX IF NOT EXISTS audit_logs_action_created_at_idx ON audit_logs (action, created_at DESC);
`

// pgxConn is the subset of *pgxpool.Pool the audit store needs.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AuditLogRepository is an append-only store: it has no update or delete path.
type AuditLogRepository struct {
	conn pgxConn
}

func NewAuditLogRepository(conn pgxConn) *AuditLogRepository {
	return &AuditLogRepository{conn: conn}
}

func (r *AuditLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.conn.Exec(ctx, auditSchemaSQL); err != nil {
		return fmt.Errorf("create audit_logs: %w", err)
	}
	return nil
}

func (r *AuditLogRepository) Append(ctx context.Context, entry audit.Entry) error {
	changes := entry.Changes
	if len(changes) == 0 {
		changes = []byte("{}")
	}

	_, err := r.conn.Exec(ctx, `
INSERT INTO audit_logs (id, admin_id, action, resource_id, status, changes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, entry.ID, entry.AdminID, entry.Action, entry.ResourceID, string(entry.Status), string(changes), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *AuditLogRepository) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error) {
	query, args := buildAuditListQuery(filter)

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			entry   audit.Entry
			status  string
			changes []byte
		)
		if err := rows.Scan(&entry.ID, &entry.AdminID, &entry.Action, &entry.ResourceID, &status, &changes, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entry.Status = audit.Status(status)
		entry.Changes = changes
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}

	return entries, nil
}

func buildAuditListQuery(filter audit.ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, column+" = $"+strconv.Itoa(len(args)))
	}
	add("admin_id", filter.AdminID)
	add("action", filter.Action)
	add("resource_id", filter.ResourceID)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditListLimit
	}
	if limit > maxAuditListLimit {
		limit = maxAuditListLimit
	}
	args = append(args, limit)

	var b strings.Builder
	b.WriteString("SELECT id::text, admin_id, action, resource_id, status, changes, created_at FROM audit_logs")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC LIMIT $")
	b.WriteString(strconv.Itoa(len(args)))

	return b.String(), args
}
