package bulk

type Tag string

const (
	Succeeded Tag = "succeeded"
	Failed    Tag = "failed"
	Skipped   Tag = "skipped"
)

const (
	ActionUpdated       = "updated"
	ActionCreated       = "created"
	ActionStatusChanged = "status_changed"
	ActionDeleted       = "deleted"
	ActionWouldCreate   = "would_create"
	ActionWouldUpdate   = "would_update"
)

const MsgUserNotFound = "User not found"

// RowOutcome is the result of attempting one command. Row is the 1-based
// position of the command in the batch input.
type RowOutcome struct {
	Row     int
	Tag     Tag
	UserID  string
	Email   string
	Action  string
	Error   string
	Reason  string
	Changes map[string]any
}

func Success(row int, userID, action string, changes map[string]any) RowOutcome {
	return RowOutcome{Row: row, Tag: Succeeded, UserID: userID, Action: action, Changes: changes}
}

func Failure(row int, userID, message string) RowOutcome {
	return RowOutcome{Row: row, Tag: Failed, UserID: userID, Error: message}
}

func Skip(row int, userID, reason string) RowOutcome {
	return RowOutcome{Row: row, Tag: Skipped, UserID: userID, Reason: reason}
}

// BatchResult aggregates outcomes in input order.
type BatchResult struct {
	TotalProcessed  int
	TotalSuccessful int
	TotalFailed     int
	TotalSkipped    int
	Successful      []RowOutcome
	Failed          []RowOutcome
	SkippedRows     []RowOutcome
}

func NewBatchResult() *BatchResult {
	return &BatchResult{
		Successful:  []RowOutcome{},
		Failed:      []RowOutcome{},
		SkippedRows: []RowOutcome{},
	}
}

func (r *BatchResult) Add(o RowOutcome) {
	r.TotalProcessed++
	switch o.Tag {
	case Succeeded:
		r.TotalSuccessful++
		r.Successful = append(r.Successful, o)
	case Failed:
		r.TotalFailed++
		r.Failed = append(r.Failed, o)
	case Skipped:
		r.TotalSkipped++
		r.SkippedRows = append(r.SkippedRows, o)
	}
}

// Counts is the payload of a batch summary audit entry.
func (r *BatchResult) Counts() map[string]any {
	return map[string]any{
		"totalProcessed":  r.TotalProcessed,
		"totalSuccessful": r.TotalSuccessful,
		"totalFailed":     r.TotalFailed,
		"totalSkipped":    r.TotalSkipped,
	}
}
