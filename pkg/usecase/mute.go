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

// MuteUseCase manages timed mutes. The periodic sweep lifts expired ones.
type MuteUseCase struct {
	repo    interfaces.Repository
	chatSvc chat.Service
}

func NewMuteUseCase(repo interfaces.Repository, chatSvc chat.Service) *MuteUseCase {
	return &MuteUseCase{
		repo:    repo,
		chatSvc: chatSvc,
	}
}

// Record books a reported mute so the sweep can lift it at expiry. A zero
// duration means the mute lasts until lifted manually.
func (uc *MuteUseCase) Record(ctx context.Context, communityID types.CommunityID, targetID types.UserID, moderatorID types.UserID, reason string, duration time.Duration) error {
	now := time.Now().UTC()
	rec := &model.MuteRecord{
		TargetID:    targetID,
		CommunityID: communityID,
		Reason:      reason,
		ModeratorID: moderatorID,
		CreatedAt:   now,
	}
	if duration > 0 {
		expiry := now.Add(duration)
		rec.ExpiresAt = &expiry
	}

	if err := uc.repo.Mute().Put(ctx, rec); err != nil {
		errutil.Handle(ctx, err, "failed to persist mute record")
	}

	logging.From(ctx).Info("mute recorded",
		"community_id", communityID, "target_id", targetID, "duration", duration)
	return nil
}

// Lift removes the mute at the platform and drops the record. Unknown
// records are a no-op.
func (uc *MuteUseCase) Lift(ctx context.Context, communityID types.CommunityID, targetID types.UserID) error {
	_, err := uc.repo.Mute().Get(ctx, communityID, targetID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to get mute record", goerr.V(TargetIDKey, targetID))
	}

	if uc.chatSvc != nil {
		if err := uc.chatSvc.Unmute(ctx, communityID, targetID); err != nil {
			return goerr.Wrap(err, "failed to unmute", goerr.V(TargetIDKey, targetID))
		}
	}

	if err := uc.repo.Mute().Delete(ctx, communityID, targetID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		errutil.Handle(ctx, err, "failed to drop mute record")
	}

	logging.From(ctx).Info("mute lifted", "community_id", communityID, "target_id", targetID)
	return nil
}

// SweepExpired lifts every mute whose expiry has passed. A target the
// platform no longer knows is dropped without an unmute call. Platform
// failures leave the record for the next sweep.
func (uc *MuteUseCase) SweepExpired(ctx context.Context, now time.Time) error {
	records, err := uc.repo.Mute().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list mute records")
	}

	for _, rec := range records {
		if !rec.Expired(now) {
			continue
		}

		if uc.chatSvc != nil {
			exists, err := uc.chatSvc.UserExists(ctx, rec.TargetID)
			if err != nil {
				errutil.Handle(ctx, err, "failed to check mute target existence")
				continue
			}
			if exists {
				if err := uc.chatSvc.Unmute(ctx, rec.CommunityID, rec.TargetID); err != nil {
					errutil.Handle(ctx, err, "failed to unmute expired target")
					continue
				}
			}
		}

		if err := uc.repo.Mute().Delete(ctx, rec.CommunityID, rec.TargetID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			errutil.Handle(ctx, err, "failed to drop expired mute record")
			continue
		}

		logging.From(ctx).Info("expired mute lifted",
			"community_id", rec.CommunityID, "target_id", rec.TargetID)
	}

	return nil
}
