package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/service/chat"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// RoleUseCase preserves role sets across departures. On leaving, the user's
// roles are snapshotted; on return, they are restored. The snapshot stays in
// place after restoration so a later departure overwrites it.
type RoleUseCase struct {
	repo    interfaces.Repository
	chatSvc chat.Service
}

func NewRoleUseCase(repo interfaces.Repository, chatSvc chat.Service) *RoleUseCase {
	return &RoleUseCase{
		repo:    repo,
		chatSvc: chatSvc,
	}
}

// HandleMemberLeft snapshots the departing user's roles. An empty role set
// is still recorded so a return restores nothing instead of stale data.
func (uc *RoleUseCase) HandleMemberLeft(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	if uc.chatSvc == nil {
		return nil
	}

	roles, err := uc.chatSvc.ListUserRoles(ctx, userID)
	if err != nil {
		return goerr.Wrap(err, "failed to list departing user roles", goerr.V("user_id", userID))
	}

	snap := &model.RoleSnapshot{
		UserID:      userID,
		CommunityID: communityID,
		Roles:       roles,
		SavedAt:     time.Now().UTC(),
	}
	if err := uc.repo.RoleSnapshot().Put(ctx, snap); err != nil {
		errutil.Handle(ctx, err, "failed to persist role snapshot")
	}

	logging.From(ctx).Info("role snapshot saved",
		"community_id", communityID, "user_id", userID, "roles", len(roles))
	return nil
}

// HandleMemberJoined restores the returning user's roles from the snapshot
// and marks any outstanding rejoin invites for them as consumed. A user with
// no snapshot is a plain new member.
func (uc *RoleUseCase) HandleMemberJoined(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	uc.consumeInvites(ctx, communityID, userID)

	snap, err := uc.repo.RoleSnapshot().Get(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to get role snapshot", goerr.V("user_id", userID))
	}
	if len(snap.Roles) == 0 || uc.chatSvc == nil {
		return nil
	}

	if err := uc.chatSvc.AssignUserRoles(ctx, userID, snap.Roles); err != nil {
		return goerr.Wrap(err, "failed to restore user roles",
			goerr.V("user_id", userID), goerr.V("roles", snap.Roles))
	}

	logging.From(ctx).Info("roles restored",
		"community_id", communityID, "user_id", userID, "roles", len(snap.Roles))
	return nil
}

func (uc *RoleUseCase) consumeInvites(ctx context.Context, communityID types.CommunityID, userID types.UserID) {
	invites, err := uc.repo.Invite().List(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to list invite records")
		return
	}
	for _, inv := range invites {
		if inv.CommunityID != communityID || inv.UserID != userID || inv.Consumed {
			continue
		}
		inv.Consumed = true
		if err := uc.repo.Invite().Put(ctx, inv); err != nil {
			errutil.Handle(ctx, err, "failed to mark invite consumed")
		}
	}
}
