package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/user-bulkops/internal/application/user"
	"go.uber.org/zap"
)

// UserHandler serves single-user reads, mostly for checking the result of a
// bulk run against one account.
type UserHandler struct {
	useCase app.GetUserByID
	log     *zap.Logger
}

func NewUserHandler(useCase app.GetUserByID, log *zap.Logger) *UserHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserHandler{useCase: useCase, log: log}
}

func (h *UserHandler) GetUserByID(c echo.Context) error {
	id := c.Param("id")
	out, err := h.useCase.Execute(c.Request().Context(), app.GetUserByIDInput{ID: id})
	if err != nil {
		return h.fail(c, id, err)
	}
	return c.JSON(http.StatusOK, apiResponse{Success: true, Data: out})
}

func (h *UserHandler) fail(c echo.Context, id string, err error) error {
	switch {
	case errors.Is(err, app.ErrInvalidUserID):
		return respondError(c, http.StatusBadRequest, "invalid_user_id", "Invalid user id")
	case errors.Is(err, app.ErrUserNotFound):
		return respondError(c, http.StatusNotFound, "user_not_found", "User not found")
	}

	h.log.Error("get user failed", zap.String("user_id", id), zap.Error(err))
	return respondError(c, http.StatusInternalServerError, "internal_error", "failed to get user")
}
