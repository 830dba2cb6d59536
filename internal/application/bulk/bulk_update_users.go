package bulk

import (
	"context"
	"fmt"

	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
)

type UserUpdate struct {
	UserID string
	Data   map[string]any
}

type BulkUpdateUsersInput struct {
	Admin domainbulk.Admin
	Users []UserUpdate
}

type BulkUpdateUsers interface {
	Execute(ctx context.Context, in BulkUpdateUsersInput) (BatchOutput, error)
}

type bulkUpdateUsers struct {
	coordinator *Coordinator
	limits      Limits
}

func NewBulkUpdateUsers(coordinator *Coordinator, limits Limits) BulkUpdateUsers {
	return &bulkUpdateUsers{coordinator: coordinator, limits: limits.withDefaults()}
}

func (uc *bulkUpdateUsers) Execute(ctx context.Context, in BulkUpdateUsersInput) (BatchOutput, error) {
	if err := checkBatchSize(len(in.Users), uc.limits.MaxBatchSize); err != nil {
		return BatchOutput{}, err
	}

	commands := make([]domainbulk.Command, 0, len(in.Users))
	for _, u := range in.Users {
		commands = append(commands, domainbulk.UpdateCommand{UserID: u.UserID, Fields: u.Data})
	}

	return uc.coordinator.run(ctx, batchRequest{
		admin:    in.Admin,
		action:   audit.ActionBulkUpdate,
		commands: commands,
	})
}

func checkBatchSize(n, max int) error {
	if n == 0 {
		return ErrEmptyBatch
	}
	if n > max {
		return fmt.Errorf("%w: %d items, limit is %d", ErrBatchTooLarge, n, max)
	}
	return nil
}
