package bulk

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	"github.com/mohammadpnp/user-bulkops/internal/infrastructure/csvcodec"
)

type ImportUsersFromCSVInput struct {
	Admin          domainbulk.Admin
	ContentType    string
	File           io.Reader
	DryRun         bool
	UpdateExisting bool
	// FieldMapping renames CSV headers to import field names.
	FieldMapping map[string]string
	Progress     ProgressReporter
}

type ImportUsersFromCSV interface {
	Execute(ctx context.Context, in ImportUsersFromCSVInput) (BatchOutput, error)
}

type importUsersFromCSV struct {
	coordinator *Coordinator
	limits      Limits
}

func NewImportUsersFromCSV(coordinator *Coordinator, limits Limits) ImportUsersFromCSV {
	return &importUsersFromCSV{coordinator: coordinator, limits: limits.withDefaults()}
}

// Execute parses the whole file before the first row is applied, so a
// malformed file never produces partial work.
func (uc *importUsersFromCSV) Execute(ctx context.Context, in ImportUsersFromCSVInput) (BatchOutput, error) {
	if in.File == nil {
		return BatchOutput{}, fmt.Errorf("%w: file is required", ErrInvalidImportFile)
	}

	rows, err := csvcodec.Parse(in.ContentType, in.File, in.FieldMapping)
	if err != nil {
		return BatchOutput{}, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}

	commands := make([]domainbulk.Command, 0)
	for {
		fields, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return BatchOutput{}, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
		}
		if len(commands) == uc.limits.MaxImportRows {
			return BatchOutput{}, fmt.Errorf("%w: more than %d rows", ErrBatchTooLarge, uc.limits.MaxImportRows)
		}
		commands = append(commands, domainbulk.ImportRowCommand{RawFields: fields})
	}
	if len(commands) == 0 {
		return BatchOutput{}, fmt.Errorf("%w: file has no data rows", ErrEmptyBatch)
	}

	action := audit.ActionImport
	if in.DryRun {
		action = audit.ActionImportDryRun
	}

	return uc.coordinator.run(ctx, batchRequest{
		admin:    in.Admin,
		action:   action,
		commands: commands,
		options:  ApplyOptions{DryRun: in.DryRun, UpdateExisting: in.UpdateExisting},
		progress: in.Progress,
	})
}
