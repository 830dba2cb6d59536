package echo

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
)

const (
	HeaderAdminID    = "X-Admin-ID"
	HeaderAdminEmail = "X-Admin-Email"

	adminContextKey = "bulkops.admin"
)

// RequireAdmin reads the administrator identity resolved by the upstream
// auth layer. Requests without a valid X-Admin-ID never reach a handler.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(HeaderAdminID))
			id, err := uuid.Parse(raw)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, "unauthorized", "administrator identity is required")
			}

			c.Set(adminContextKey, domainbulk.Admin{
				ID:    id.String(),
				Email: strings.TrimSpace(c.Request().Header.Get(HeaderAdminEmail)),
			})
			return next(c)
		}
	}
}

func adminFrom(c echo.Context) domainbulk.Admin {
	admin, _ := c.Get(adminContextKey).(domainbulk.Admin)
	return admin
}
