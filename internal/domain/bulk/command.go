// Package bulk holds the value types of the bulk user operations engine:
// commands flowing in, per-row outcomes and the aggregated batch result.
package bulk

type Kind string

const (
	KindUpdate       Kind = "update"
	KindStatusChange Kind = "status_change"
	KindSoftDelete   Kind = "soft_delete"
	KindImportRow    Kind = "import_row"
)

// Command is one row of a batch. The set of implementations is closed.
type Command interface {
	Kind() Kind
	isCommand()
}

// UpdateCommand carries raw request fields; the validator decides which of
// them are recognized.
type UpdateCommand struct {
	UserID string
	Fields map[string]any
}

type StatusChangeCommand struct {
	UserID    string
	NewStatus string
	Reason    string
}

type SoftDeleteCommand struct {
	UserID string
	Reason string
}

// ImportRowCommand is one parsed CSV row keyed by canonical field name.
type ImportRowCommand struct {
	RawFields map[string]string
}

func (UpdateCommand) Kind() Kind       { return KindUpdate }
func (StatusChangeCommand) Kind() Kind { return KindStatusChange }
func (SoftDeleteCommand) Kind() Kind   { return KindSoftDelete }
func (ImportRowCommand) Kind() Kind    { return KindImportRow }

func (UpdateCommand) isCommand()       {}
func (StatusChangeCommand) isCommand() {}
func (SoftDeleteCommand) isCommand()   {}
func (ImportRowCommand) isCommand()    {}

// Admin is the acting administrator, resolved by the auth layer.
type Admin struct {
	ID    string
	Email string
}
