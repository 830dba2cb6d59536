package bootstrap

import (
	auditapp "github.com/mohammadpnp/user-bulkops/internal/application/audit"
	app "github.com/mohammadpnp/user-bulkops/internal/application/bulk"
	userapp "github.com/mohammadpnp/user-bulkops/internal/application/user"
	"github.com/mohammadpnp/user-bulkops/internal/config"
	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
	httpecho "github.com/mohammadpnp/user-bulkops/internal/interfaces/http/echo"
	"go.uber.org/zap"
)

// Services are the use cases shared by the HTTP server and bulkctl.
type Services struct {
	Bulk      httpecho.BulkUseCases
	AuditLogs auditapp.ListAuditLogs
	GetUser   userapp.GetUserByID
}

func Limits(cfg config.BulkConfig) app.Limits {
	return app.Limits{
		MaxBatchSize:   cfg.MaxBatchSize,
		MaxImportRows:  cfg.MaxImportRows,
		MaxExportRows:  cfg.MaxExportRows,
		ExportFileName: cfg.ExportFileName,
	}
}

func NewServices(users domain.UserRepository, auditLogs audit.Repository, cfg config.BulkConfig, log *zap.Logger) Services {
	limits := Limits(cfg)
	recorder := app.NewAuditRecorder(auditLogs, log)
	coordinator := app.NewCoordinator(app.NewValidator(), app.NewApplier(users), recorder, log)

	return Services{
		Bulk: httpecho.BulkUseCases{
			Update:   app.NewBulkUpdateUsers(coordinator, limits),
			Status:   app.NewBulkChangeUserStatus(coordinator, limits),
			Delete:   app.NewBulkDeleteUsers(coordinator, limits),
			Import:   app.NewImportUsersFromCSV(coordinator, limits),
			Export:   app.NewExportUsersToCSV(users, recorder, limits),
			Template: app.NewDownloadImportTemplate(),
		},
		AuditLogs: auditapp.NewListAuditLogs(auditLogs),
		GetUser:   userapp.NewGetUserByID(users),
	}
}
