package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// StrikeUseCase accumulates per-user strike history. Strikes never expire;
// only an explicit clear removes them.
type StrikeUseCase struct {
	repo interfaces.Repository
}

func NewStrikeUseCase(repo interfaces.Repository) *StrikeUseCase {
	return &StrikeUseCase{repo: repo}
}

// Add appends a strike and returns the new total.
func (uc *StrikeUseCase) Add(ctx context.Context, communityID types.CommunityID, userID types.UserID, reason string) (int, error) {
	rec, err := uc.repo.Strike().Get(ctx, communityID, userID)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNotFound) {
			return 0, goerr.Wrap(err, "failed to get strike record", goerr.V("user_id", userID))
		}
		rec = &model.StrikeRecord{
			UserID:      userID,
			CommunityID: communityID,
		}
	}

	rec.Strikes = append(rec.Strikes, model.Strike{
		At:     time.Now().UTC(),
		Reason: reason,
	})

	if err := uc.repo.Strike().Put(ctx, rec); err != nil {
		return 0, goerr.Wrap(err, "failed to persist strike record", goerr.V("user_id", userID))
	}

	logging.From(ctx).Info("strike added",
		"community_id", communityID, "user_id", userID, "total", len(rec.Strikes))
	return len(rec.Strikes), nil
}

// Count returns the strike total for a user, zero when none are recorded.
func (uc *StrikeUseCase) Count(ctx context.Context, communityID types.CommunityID, userID types.UserID) (int, error) {
	rec, err := uc.repo.Strike().Get(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return 0, nil
		}
		return 0, goerr.Wrap(err, "failed to get strike record", goerr.V("user_id", userID))
	}
	return len(rec.Strikes), nil
}

// History returns the recorded strikes for a user, oldest first.
func (uc *StrikeUseCase) History(ctx context.Context, communityID types.CommunityID, userID types.UserID) ([]model.Strike, error) {
	rec, err := uc.repo.Strike().Get(ctx, communityID, userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get strike record", goerr.V("user_id", userID))
	}
	return rec.Strikes, nil
}

// Clear removes every strike for a user. Unknown users are a no-op.
func (uc *StrikeUseCase) Clear(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	if err := uc.repo.Strike().Delete(ctx, communityID, userID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil
		}
		return goerr.Wrap(err, "failed to clear strike record", goerr.V("user_id", userID))
	}
	logging.From(ctx).Info("strikes cleared", "community_id", communityID, "user_id", userID)
	return nil
}
