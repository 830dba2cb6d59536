package bulk

import (
	"context"

	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
)

type BulkDeleteUsersInput struct {
	Admin   domainbulk.Admin
	UserIDs []string
	Reason  string
}

type BulkDeleteUsers interface {
	Execute(ctx context.Context, in BulkDeleteUsersInput) (BatchOutput, error)
}

type bulkDeleteUsers struct {
	coordinator *Coordinator
	limits      Limits
}

func NewBulkDeleteUsers(coordinator *Coordinator, limits Limits) BulkDeleteUsers {
	return &bulkDeleteUsers{coordinator: coordinator, limits: limits.withDefaults()}
}

// Execute soft-deletes every listed user. Records are kept and marked inactive.
func (uc *bulkDeleteUsers) Execute(ctx context.Context, in BulkDeleteUsersInput) (BatchOutput, error) {
	if err := checkBatchSize(len(in.UserIDs), uc.limits.MaxBatchSize); err != nil {
		return BatchOutput{}, err
	}

	commands := make([]domainbulk.Command, 0, len(in.UserIDs))
	for _, id := range in.UserIDs {
		commands = append(commands, domainbulk.SoftDeleteCommand{UserID: id, Reason: in.Reason})
	}

	return uc.coordinator.run(ctx, batchRequest{
		admin:    in.Admin,
		action:   audit.ActionBulkDelete,
		commands: commands,
	})
}
