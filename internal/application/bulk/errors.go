package bulk

import "errors"

var (
	ErrEmptyBatch          = errors.New("batch is empty")
	ErrInvalidBatch        = errors.New("invalid batch")
	ErrBatchTooLarge       = errors.New("batch exceeds maximum size")
	ErrInvalidImportFile   = errors.New("invalid import file")
	ErrInvalidExportFilter = errors.New("invalid export filter")
	ErrNoRecordsFound      = errors.New("no records found")
	ErrInfrastructure      = errors.New("batch aborted by infrastructure failure")
	ErrExportUsers         = errors.New("failed to export users")
)
