package echo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/user-bulkops/internal/application/bulk"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	"go.uber.org/zap"
)

// BulkUseCases groups the entry points served under /api/v1/admin/users.
type BulkUseCases struct {
	Update   app.BulkUpdateUsers
	Status   app.BulkChangeUserStatus
	Delete   app.BulkDeleteUsers
	Import   app.ImportUsersFromCSV
	Export   app.ExportUsersToCSV
	Template app.DownloadImportTemplate
}

const (
	batchStatusAborted = "aborted"
	msgBatchAborted    = "batch aborted, rows before the failure were committed"
)

type BulkHandler struct {
	uc  BulkUseCases
	log *zap.Logger
}

type bulkUpdateItem struct {
	UserID string         `json:"userId"`
	Data   map[string]any `json:"data"`
}

type bulkUpdateRequest struct {
	Users []bulkUpdateItem `json:"users"`
}

type bulkStatusRequest struct {
	UserIDs []string `json:"userIds"`
	Status  string   `json:"status"`
	Reason  string   `json:"reason"`
}

type bulkDeleteRequest struct {
	UserIDs []string `json:"userIds"`
	Reason  string   `json:"reason"`
}

type rowView struct {
	Row     int            `json:"row"`
	UserID  string         `json:"userId,omitempty"`
	Email   string         `json:"email,omitempty"`
	Action  string         `json:"action,omitempty"`
	Error   string         `json:"error,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Changes map[string]any `json:"changes,omitempty"`
}

type batchView struct {
	BatchID         string    `json:"batchId"`
	Status          string    `json:"status"`
	TotalProcessed  int       `json:"totalProcessed"`
	TotalSuccessful int       `json:"totalSuccessful"`
	TotalFailed     int       `json:"totalFailed"`
	TotalSkipped    int       `json:"totalSkipped"`
	Successful      []rowView `json:"successful"`
	Failed          []rowView `json:"failed"`
	Skipped         []rowView `json:"skipped"`
}

func NewBulkHandler(uc BulkUseCases, log *zap.Logger) *BulkHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BulkHandler{uc: uc, log: log}
}

func (h *BulkHandler) BulkUpdate(c echo.Context) error {
	var req bulkUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	users := make([]app.UserUpdate, 0, len(req.Users))
	for _, u := range req.Users {
		users = append(users, app.UserUpdate{UserID: u.UserID, Data: u.Data})
	}

	out, err := h.uc.Update.Execute(c.Request().Context(), app.BulkUpdateUsersInput{
		Admin: adminFrom(c),
		Users: users,
	})
	if err != nil {
		return h.failBatch(c, out, err)
	}
	return respondBatch(c, out)
}

func (h *BulkHandler) BulkStatus(c echo.Context) error {
	var req bulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	out, err := h.uc.Status.Execute(c.Request().Context(), app.BulkChangeUserStatusInput{
		Admin:   adminFrom(c),
		UserIDs: req.UserIDs,
		Status:  req.Status,
		Reason:  req.Reason,
	})
	if err != nil {
		return h.failBatch(c, out, err)
	}
	return respondBatch(c, out)
}

func (h *BulkHandler) BulkDelete(c echo.Context) error {
	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	out, err := h.uc.Delete.Execute(c.Request().Context(), app.BulkDeleteUsersInput{
		Admin:   adminFrom(c),
		UserIDs: req.UserIDs,
		Reason:  req.Reason,
	})
	if err != nil {
		return h.failBatch(c, out, err)
	}
	return respondBatch(c, out)
}

func (h *BulkHandler) Import(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}

	dryRun, err := formBool(c, "dryRun")
	if err != nil {
		return badRequest(c, err.Error())
	}
	updateExisting, err := formBool(c, "updateExisting")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var mapping map[string]string
	if raw := strings.TrimSpace(c.FormValue("fieldMapping")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			return badRequest(c, "fieldMapping must be a JSON object of strings")
		}
	}

	file, err := header.Open()
	if err != nil {
		return badRequest(c, "file could not be read")
	}
	defer file.Close()

	// Generic clients upload .csv files as application/octet-stream.
	contentType := header.Header.Get(echo.HeaderContentType)
	if (contentType == "" || contentType == echo.MIMEOctetStream) && strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		contentType = "text/csv"
	}

	out, err := h.uc.Import.Execute(c.Request().Context(), app.ImportUsersFromCSVInput{
		Admin:          adminFrom(c),
		ContentType:    contentType,
		File:           file,
		DryRun:         dryRun,
		UpdateExisting: updateExisting,
		FieldMapping:   mapping,
	})
	if err != nil {
		return h.failBatch(c, out, err)
	}
	return respondBatch(c, out)
}

func (h *BulkHandler) Export(c echo.Context) error {
	from, err := queryTime(c, "createdFrom")
	if err != nil {
		return badRequest(c, err.Error())
	}
	to, err := queryTime(c, "createdTo")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var fields []string
	if raw := strings.TrimSpace(c.QueryParam("fields")); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
	}

	out, err := h.uc.Export.Execute(c.Request().Context(), app.ExportUsersToCSVInput{
		Admin:       adminFrom(c),
		Status:      c.QueryParam("status"),
		Role:        c.QueryParam("role"),
		Search:      c.QueryParam("search"),
		CreatedFrom: from,
		CreatedTo:   to,
		Fields:      fields,
		FileName:    c.QueryParam("filename"),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return attachment(c, out.FileName, out.Content)
}

func (h *BulkHandler) ImportTemplate(c echo.Context) error {
	out, err := h.uc.Template.Execute(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return attachment(c, out.FileName, out.Content)
}

func (h *BulkHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, app.ErrEmptyBatch):
		return respondError(c, http.StatusBadRequest, "empty_batch", err.Error())
	case errors.Is(err, app.ErrBatchTooLarge):
		return respondError(c, http.StatusBadRequest, "batch_too_large", err.Error())
	case errors.Is(err, app.ErrInvalidBatch):
		return respondError(c, http.StatusBadRequest, "invalid_batch", err.Error())
	case errors.Is(err, app.ErrInvalidImportFile):
		return respondError(c, http.StatusBadRequest, "invalid_import_file", err.Error())
	case errors.Is(err, app.ErrInvalidExportFilter):
		return respondError(c, http.StatusBadRequest, "invalid_export_filter", err.Error())
	case errors.Is(err, app.ErrNoRecordsFound):
		return respondError(c, http.StatusNotFound, "no_records_found", "no users match the export filters")
	case errors.Is(err, app.ErrInfrastructure):
		h.log.Error("bulk request aborted", zap.String("path", c.Path()), zap.Error(err))
		return respondError(c, http.StatusInternalServerError, "batch_aborted", msgBatchAborted)
	}

	h.log.Error("bulk request failed", zap.String("path", c.Path()), zap.Error(err))
	return respondError(c, http.StatusInternalServerError, "internal_error", "failed to process request")
}

// failBatch keeps the rows an aborted batch already committed in the response.
func (h *BulkHandler) failBatch(c echo.Context, out app.BatchOutput, err error) error {
	if !errors.Is(err, app.ErrInfrastructure) || out.Result == nil {
		return h.fail(c, err)
	}

	h.log.Error("bulk request aborted",
		zap.String("path", c.Path()),
		zap.String("batch_id", out.BatchID),
		zap.Int("processed", out.Result.TotalProcessed),
		zap.Error(err),
	)
	return c.JSON(http.StatusInternalServerError, apiResponse{
		Success: false,
		Data:    newBatchView(out, batchStatusAborted),
		Error:   &errorBody{Code: "batch_aborted", Message: msgBatchAborted},
	})
}

func respondBatch(c echo.Context, out app.BatchOutput) error {
	return c.JSON(out.Decision.HTTPCode, apiResponse{
		Success: out.Decision.Success,
		Data:    newBatchView(out, string(out.Decision.Status)),
	})
}

func newBatchView(out app.BatchOutput, status string) batchView {
	r := out.Result
	return batchView{
		BatchID:         out.BatchID,
		Status:          status,
		TotalProcessed:  r.TotalProcessed,
		TotalSuccessful: r.TotalSuccessful,
		TotalFailed:     r.TotalFailed,
		TotalSkipped:    r.TotalSkipped,
		Successful:      rowViews(r.Successful),
		Failed:          rowViews(r.Failed),
		Skipped:         rowViews(r.SkippedRows),
	}
}

func rowViews(outcomes []domainbulk.RowOutcome) []rowView {
	views := make([]rowView, 0, len(outcomes))
	for _, o := range outcomes {
		views = append(views, rowView{
			Row:     o.Row,
			UserID:  o.UserID,
			Email:   o.Email,
			Action:  o.Action,
			Error:   o.Error,
			Reason:  o.Reason,
			Changes: o.Changes,
		})
	}
	return views
}

func attachment(c echo.Context, fileName string, content []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, content)
}

func formBool(c echo.Context, name string) (bool, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean", name)
	}
	return v, nil
}

// queryTime accepts RFC3339 timestamps or plain dates.
func queryTime(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%s must be an RFC3339 timestamp or YYYY-MM-DD date", name)
}
