package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
	"go.uber.org/zap"
)

const msgInternalError = "Internal error"

// ProgressReporter is told about every processed row. progressbar.ProgressBar
// satisfies it.
type ProgressReporter interface {
	Add(num int) error
}

// Limits bound the size of a single request.
type Limits struct {
	MaxBatchSize   int
	MaxImportRows  int
	MaxExportRows  int
	ExportFileName string
}

func (l Limits) withDefaults() Limits {
	if l.MaxBatchSize <= 0 {
		l.MaxBatchSize = 1000
	}
	if l.MaxImportRows <= 0 {
		l.MaxImportRows = 10000
	}
	if l.MaxExportRows <= 0 {
		l.MaxExportRows = 100000
	}
	if l.ExportFileName == "" {
		l.ExportFileName = "users_export.csv"
	}
	return l
}

// BatchOutput is what every batch entry point returns.
type BatchOutput struct {
	BatchID  string
	Result   *domainbulk.BatchResult
	Decision domainbulk.Decision
}

type batchRequest struct {
	admin    domainbulk.Admin
	action   string
	commands []domainbulk.Command
	options  ApplyOptions
	progress ProgressReporter
}

// Coordinator drives one batch: validate, apply and audit each row in input
// order, then write the summary and decide the response status.
type Coordinator struct {
	validator  *Validator
	applier    *Applier
	recorder   *AuditRecorder
	log        *zap.Logger
	newBatchID func() string
}

func NewCoordinator(validator *Validator, applier *Applier, recorder *AuditRecorder, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		validator:  validator,
		applier:    applier,
		recorder:   recorder,
		log:        log,
		newBatchID: uuid.NewString,
	}
}

func (c *Coordinator) run(ctx context.Context, req batchRequest) (BatchOutput, error) {
	// A started batch finishes even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	if req.options.DryRun {
		req.options.planned = make(map[string]domain.User)
	}

	batchID := c.newBatchID()
	result := domainbulk.NewBatchResult()
	started := time.Now()
	log := c.log.With(
		zap.String("batch_id", batchID),
		zap.String("admin_id", req.admin.ID),
		zap.String("action", req.action),
	)

	for i, cmd := range req.commands {
		row := i + 1

		outcome, err := c.process(ctx, req, cmd)
		if err != nil {
			outcome = domainbulk.Failure(row, commandUserID(cmd), msgInternalError)
			outcome.Email = commandEmail(cmd)
			result.Add(outcome)
			c.recorder.RecordRow(ctx, req.admin.ID, req.action, batchID, outcome)
			c.recorder.RecordSummary(ctx, req.admin.ID, req.action, batchID, result, audit.StatusAborted,
				map[string]any{"abortedAtRow": row, "totalRows": len(req.commands)})

			log.Error("batch aborted", zap.Int("row", row), zap.Error(err))
			return BatchOutput{BatchID: batchID, Result: result}, fmt.Errorf("%w: row %d: %v", ErrInfrastructure, row, err)
		}

		outcome.Row = row
		result.Add(outcome)
		c.recorder.RecordRow(ctx, req.admin.ID, req.action, batchID, outcome)

		if req.progress != nil {
			_ = req.progress.Add(1)
		}
	}

	decision := domainbulk.DecideStatus(result, req.options.DryRun)
	c.recorder.RecordSummary(ctx, req.admin.ID, req.action, batchID, result, summaryStatus(decision), nil)

	log.Info("batch completed",
		zap.String("status", string(decision.Status)),
		zap.Int("processed", result.TotalProcessed),
		zap.Int("successful", result.TotalSuccessful),
		zap.Int("failed", result.TotalFailed),
		zap.Int("skipped", result.TotalSkipped),
		zap.Duration("duration", time.Since(started)),
	)

	return BatchOutput{BatchID: batchID, Result: result, Decision: decision}, nil
}

// process returns a row outcome, or an error only for infrastructure faults.
func (c *Coordinator) process(ctx context.Context, req batchRequest, cmd domainbulk.Command) (domainbulk.RowOutcome, error) {
	valid, err := c.validator.Validate(cmd)
	if err != nil {
		outcome := domainbulk.Failure(0, commandUserID(cmd), err.Error())
		outcome.Email = commandEmail(cmd)
		return outcome, nil
	}
	return c.applier.Apply(ctx, req.admin, valid, req.options)
}

func commandUserID(cmd domainbulk.Command) string {
	switch c := cmd.(type) {
	case domainbulk.UpdateCommand:
		return c.UserID
	case domainbulk.StatusChangeCommand:
		return c.UserID
	case domainbulk.SoftDeleteCommand:
		return c.UserID
	}
	return ""
}

func commandEmail(cmd domainbulk.Command) string {
	if c, ok := cmd.(domainbulk.ImportRowCommand); ok {
		return c.RawFields["email"]
	}
	return ""
}
