package echo

import e "github.com/labstack/echo/v4"

// RegisterRoutes mounts every non-nil handler. Admin routes sit behind
// RequireAdmin.
func RegisterRoutes(server *e.Echo, bulkHandler *BulkHandler, auditHandler *AuditHandler, userHandler *UserHandler) {
	admin := server.Group("/api/v1/admin", RequireAdmin())

	if bulkHandler != nil {
		users := admin.Group("/users")
		users.POST("/bulk-update", bulkHandler.BulkUpdate)
		users.POST("/bulk-status", bulkHandler.BulkStatus)
		users.POST("/bulk-delete", bulkHandler.BulkDelete)
		users.POST("/import", bulkHandler.Import)
		users.GET("/import/template", bulkHandler.ImportTemplate)
		users.GET("/export", bulkHandler.Export)
	}
	if auditHandler != nil {
		admin.GET("/audit-logs", auditHandler.ListAuditLogs)
	}
	if userHandler != nil {
		server.GET("/api/v1/users/:id", userHandler.GetUserByID)
	}
}
