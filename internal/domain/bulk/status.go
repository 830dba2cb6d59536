package bulk

import "net/http"

type BatchStatus string

const (
	StatusFull    BatchStatus = "full_success"
	StatusPartial BatchStatus = "partial_success"
	StatusFailed  BatchStatus = "failed"
	StatusPreview BatchStatus = "preview"
)

// Decision is the overall verdict for a completed batch.
type Decision struct {
	Status   BatchStatus
	Success  bool
	HTTPCode int
}

// DecideStatus is the single place where batch counts turn into a response
// status. Cases are checked top to bottom:
//
//	dry run                                  -> preview  200, success = no failures
//	failed == 0 && processed > 0             -> full     200, success
//	failed > 0 && successful > 0             -> partial  207, success
//	failed > 0 && successful == 0            -> failed   422, not success
func DecideStatus(r *BatchResult, dryRun bool) Decision {
	switch {
	case dryRun:
		return Decision{Status: StatusPreview, Success: r.TotalFailed == 0, HTTPCode: http.StatusOK}
	case r.TotalFailed == 0 && r.TotalProcessed > 0:
		return Decision{Status: StatusFull, Success: true, HTTPCode: http.StatusOK}
	case r.TotalFailed > 0 && r.TotalSuccessful > 0:
		return Decision{Status: StatusPartial, Success: true, HTTPCode: http.StatusMultiStatus}
	default:
		return Decision{Status: StatusFailed, Success: false, HTTPCode: http.StatusUnprocessableEntity}
	}
}
