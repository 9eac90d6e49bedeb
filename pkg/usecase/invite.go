package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/service/chat"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// InviteUseCase maintains the rejoin invite ledger. The daily sweep revokes
// invitations nobody used within the retention period.
type InviteUseCase struct {
	repo    interfaces.Repository
	chatSvc chat.Service
}

func NewInviteUseCase(repo interfaces.Repository, chatSvc chat.Service) *InviteUseCase {
	return &InviteUseCase{
		repo:    repo,
		chatSvc: chatSvc,
	}
}

// SweepExpired revokes and drops unconsumed invites older than retention.
// Consumed invites are dropped without a platform call. Revocation failures
// leave the record for the next sweep.
func (uc *InviteUseCase) SweepExpired(ctx context.Context, now time.Time, retention time.Duration) error {
	invites, err := uc.repo.Invite().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list invite records")
	}

	cutoff := now.Add(-retention)
	for _, inv := range invites {
		if inv.CreatedAt.After(cutoff) {
			continue
		}

		if !inv.Consumed && uc.chatSvc != nil {
			if err := uc.chatSvc.RevokeInvite(ctx, inv.ChannelID, inv.UserID); err != nil {
				errutil.Handle(ctx, err, "failed to revoke stale invite")
				continue
			}
		}

		if err := uc.repo.Invite().Delete(ctx, inv.ID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			errutil.Handle(ctx, err, "failed to drop stale invite record")
			continue
		}

		logging.From(ctx).Info("stale invite cleaned up",
			"invite_id", inv.ID, "user_id", inv.UserID, "consumed", inv.Consumed)
	}

	return nil
}
