package bootstrap

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammadpnp/user-bulkops/internal/config"
	httpecho "github.com/mohammadpnp/user-bulkops/internal/interfaces/http/echo"
	"github.com/mohammadpnp/user-bulkops/internal/logger"
	"go.uber.org/zap"
)

func NewHTTPServer(cfg config.HTTPConfig, services Services, log *zap.Logger) *echo.Echo {
	server := echo.New()
	server.HideBanner = true
	server.HidePort = true
	server.Server.ReadTimeout = cfg.RequestTimeout
	server.Server.WriteTimeout = cfg.RequestTimeout

	server.Use(middleware.Recover())
	server.Use(middleware.RequestID())
	server.Use(logger.RequestLogger(log))
	server.Use(middleware.BodyLimit(cfg.BodyLimit))

	httpecho.RegisterRoutes(server,
		httpecho.NewBulkHandler(services.Bulk, log),
		httpecho.NewAuditHandler(services.AuditLogs),
		httpecho.NewUserHandler(services.GetUser, log),
	)

	server.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return server
}
