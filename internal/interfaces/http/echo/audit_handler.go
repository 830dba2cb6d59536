package echo

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/user-bulkops/internal/application/audit"
)

type AuditHandler struct {
	useCase app.ListAuditLogs
}

func NewAuditHandler(useCase app.ListAuditLogs) *AuditHandler {
	return &AuditHandler{useCase: useCase}
}

func (h *AuditHandler) ListAuditLogs(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "limit must be an integer")
		}
		limit = n
	}

	out, err := h.useCase.Execute(c.Request().Context(), app.ListAuditLogsInput{
		AdminID:    c.QueryParam("adminId"),
		Action:     c.QueryParam("action"),
		ResourceID: c.QueryParam("resourceId"),
		Limit:      limit,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidAuditFilter) {
			return respondError(c, http.StatusBadRequest, "invalid_filter", err.Error())
		}
		return respondError(c, http.StatusInternalServerError, "internal_error", "failed to list audit logs")
	}

	return c.JSON(http.StatusOK, apiResponse{Success: true, Data: out})
}
