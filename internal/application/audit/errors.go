package audit

import "errors"

var (
	ErrInvalidAuditFilter = errors.New("invalid audit filter")
	ErrListAuditLogs      = errors.New("failed to list audit logs")
)
