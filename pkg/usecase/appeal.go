package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/service/chat"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// AppealUseCase handles the ban-appeal workflow: submission by the banned
// user, review by the owner, and the rejoin path on approval.
type AppealUseCase struct {
	repo    interfaces.Repository
	chatSvc chat.Service
	policy  Policy
}

func NewAppealUseCase(repo interfaces.Repository, chatSvc chat.Service, policy Policy) *AppealUseCase {
	return &AppealUseCase{
		repo:    repo,
		chatSvc: chatSvc,
		policy:  policy,
	}
}

// Submit records a new appeal from a banned user. Blank text is rejected.
// A user with a pending appeal in the same community gets their text
// replaced rather than a second entry.
func (uc *AppealUseCase) Submit(ctx context.Context, communityID types.CommunityID, userID types.UserID, text string) (types.AppealID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", goerr.Wrap(ErrEmptyAppeal, "cannot submit appeal", goerr.V("user_id", userID))
	}

	appeal := uc.findPending(ctx, communityID, userID)
	if appeal != nil {
		appeal.Text = text
	} else {
		appeal = model.NewAppeal(userID, communityID, text, time.Now().UTC())
	}

	if err := uc.repo.Appeal().Put(ctx, appeal); err != nil {
		errutil.Handle(ctx, err, "failed to persist appeal")
	}

	if err := uc.RenderCard(ctx, appeal); err != nil {
		errutil.Handle(ctx, err, "failed to render appeal card")
	}

	logging.From(ctx).Info("appeal submitted", "appeal_id", appeal.ID, "user_id", userID)
	return appeal.ID, nil
}

func (uc *AppealUseCase) findPending(ctx context.Context, communityID types.CommunityID, userID types.UserID) *model.Appeal {
	appeals, err := uc.repo.Appeal().List(ctx)
	if err != nil {
		errutil.Handle(ctx, err, "failed to list appeals")
		return nil
	}
	for _, a := range appeals {
		if a.CommunityID == communityID && a.UserID == userID && a.Status == types.AppealStatusPending {
			return a
		}
	}
	return nil
}

// Approve accepts an appeal: the ban is lifted, a single-use rejoin invite
// is issued and the appellant is told. Returns false for unknown or already
// resolved appeals. A platform failure aborts and leaves the appeal pending.
func (uc *AppealUseCase) Approve(ctx context.Context, appealID types.AppealID) (bool, error) {
	appeal, err := uc.repo.Appeal().Get(ctx, appealID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get appeal", goerr.V(AppealIDKey, appealID))
	}
	if appeal.Status != types.AppealStatusPending {
		return false, nil
	}

	if uc.chatSvc == nil {
		return false, goerr.New("chat service is not configured")
	}

	if err := uc.chatSvc.Unban(ctx, appeal.CommunityID, appeal.UserID); err != nil {
		return false, goerr.Wrap(err, "failed to unban appellant, approval aborted",
			goerr.V(AppealIDKey, appealID), goerr.V("user_id", appeal.UserID))
	}

	if _, err := uc.chatSvc.CreateRejoinInvite(ctx, uc.policy.HomeChannel, appeal.UserID); err != nil {
		errutil.Handle(ctx, err, "failed to create rejoin invite for appellant")
	} else {
		rec := model.NewInviteRecord(appeal.UserID, appeal.CommunityID, uc.policy.HomeChannel, time.Now().UTC())
		if err := uc.repo.Invite().Put(ctx, rec); err != nil {
			errutil.Handle(ctx, err, "failed to persist invite record")
		}
	}

	if err := uc.chatSvc.SendDM(ctx, appeal.UserID,
		"Your appeal was accepted. An invitation back into the community has been issued for you."); err != nil {
		errutil.Handle(ctx, err, "failed to notify appellant of approval")
	}

	note := fmt.Sprintf("Appeal from <@%s> was accepted: ban lifted, rejoin invitation issued.", appeal.UserID)
	if _, err := uc.chatSvc.PostMessage(ctx, uc.policy.AuditChannel, nil, note); err != nil {
		errutil.Handle(ctx, err, "failed to post appeal audit note")
	}

	if err := uc.repo.Appeal().Delete(ctx, appealID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		errutil.Handle(ctx, err, "failed to drop approved appeal")
	}

	logging.From(ctx).Info("appeal approved", "appeal_id", appealID, "user_id", appeal.UserID)
	return true, nil
}

// Deny rejects an appeal and tells the appellant. Returns false for unknown
// or already resolved appeals.
func (uc *AppealUseCase) Deny(ctx context.Context, appealID types.AppealID) (bool, error) {
	appeal, err := uc.repo.Appeal().Get(ctx, appealID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get appeal", goerr.V(AppealIDKey, appealID))
	}
	if appeal.Status != types.AppealStatusPending {
		return false, nil
	}

	if err := uc.repo.Appeal().Delete(ctx, appealID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		errutil.Handle(ctx, err, "failed to drop denied appeal")
	}

	if uc.chatSvc != nil {
		if err := uc.chatSvc.SendDM(ctx, appeal.UserID, "Your appeal was reviewed and denied."); err != nil {
			errutil.Handle(ctx, err, "failed to notify appellant of denial")
		}
	}

	logging.From(ctx).Info("appeal denied", "appeal_id", appealID, "user_id", appeal.UserID)
	return true, nil
}

// RenderCard posts a review card for an appeal into the audit channel.
func (uc *AppealUseCase) RenderCard(ctx context.Context, appeal *model.Appeal) error {
	if uc.chatSvc == nil {
		return nil
	}
	fallback := fmt.Sprintf("Appeal from <@%s>", appeal.UserID)
	if _, err := uc.chatSvc.PostMessage(ctx, uc.policy.AuditChannel, buildAppealCardBlocks(appeal), fallback); err != nil {
		return goerr.Wrap(err, "failed to post appeal card", goerr.V(AppealIDKey, appeal.ID))
	}
	return nil
}
