package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammadpnp/user-bulkops/internal/domain/audit"
	domainbulk "github.com/mohammadpnp/user-bulkops/internal/domain/bulk"
	domain "github.com/mohammadpnp/user-bulkops/internal/domain/user"
)

type BulkChangeUserStatusInput struct {
	Admin   domainbulk.Admin
	UserIDs []string
	Status  string
	Reason  string
}

type BulkChangeUserStatus interface {
	Execute(ctx context.Context, in BulkChangeUserStatusInput) (BatchOutput, error)
}

type bulkChangeUserStatus struct {
	coordinator *Coordinator
	limits      Limits
}

func NewBulkChangeUserStatus(coordinator *Coordinator, limits Limits) BulkChangeUserStatus {
	return &bulkChangeUserStatus{coordinator: coordinator, limits: limits.withDefaults()}
}

func (uc *bulkChangeUserStatus) Execute(ctx context.Context, in BulkChangeUserStatusInput) (BatchOutput, error) {
	if err := checkBatchSize(len(in.UserIDs), uc.limits.MaxBatchSize); err != nil {
		return BatchOutput{}, err
	}

	status := domain.Status(strings.ToLower(strings.TrimSpace(in.Status)))
	if !status.Valid() {
		return BatchOutput{}, fmt.Errorf("%w: unknown status %q", ErrInvalidBatch, in.Status)
	}

	commands := make([]domainbulk.Command, 0, len(in.UserIDs))
	for _, id := range in.UserIDs {
		commands = append(commands, domainbulk.StatusChangeCommand{
			UserID:    id,
			NewStatus: string(status),
			Reason:    in.Reason,
		})
	}

	return uc.coordinator.run(ctx, batchRequest{
		admin:    in.Admin,
		action:   audit.ActionBulkStatusChange,
		commands: commands,
	})
}
