package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/repository/memory"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/usecase"
)

func TestMuteSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("expired mute is lifted at the platform", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		gt.NoError(t, uc.Mute.Record(ctx, testCommunity, "U-LOUD", "U-MOD", "flooding", time.Minute))

		gt.NoError(t, uc.Mute.SweepExpired(ctx, time.Now().UTC().Add(2*time.Minute)))

		gt.Array(t, chatSvc.unmuted).Length(1)
		gt.Value(t, chatSvc.unmuted[0]).Equal("U-LOUD")

		mutes, err := repo.Mute().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, mutes).Length(0)
	})

	t.Run("unexpired mute is left alone", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		gt.NoError(t, uc.Mute.Record(ctx, testCommunity, "U-LOUD", "U-MOD", "flooding", time.Hour))
		gt.NoError(t, uc.Mute.SweepExpired(ctx, time.Now().UTC()))

		gt.Array(t, chatSvc.unmuted).Length(0)
		mutes, err := repo.Mute().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, mutes).Length(1)
	})

	t.Run("indefinite mute never expires", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		gt.NoError(t, uc.Mute.Record(ctx, testCommunity, "U-LOUD", "U-MOD", "flooding", 0))
		gt.NoError(t, uc.Mute.SweepExpired(ctx, time.Now().UTC().Add(24*365*time.Hour)))

		mutes, err := repo.Mute().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, mutes).Length(1)
	})

	t.Run("vanished target is dropped without a platform call", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		chatSvc.userExistsFn = func(ctx context.Context, userID types.UserID) (bool, error) {
			return false, nil
		}
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		gt.NoError(t, uc.Mute.Record(ctx, testCommunity, "U-GONE", "U-MOD", "flooding", time.Minute))
		gt.NoError(t, uc.Mute.SweepExpired(ctx, time.Now().UTC().Add(2*time.Minute)))

		gt.Array(t, chatSvc.unmuted).Length(0)
		mutes, err := repo.Mute().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, mutes).Length(0)
	})
}

func TestMuteLift(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	chatSvc := newMockChatService()
	uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

	gt.NoError(t, uc.Mute.Record(ctx, testCommunity, "U-LOUD", "U-MOD", "flooding", 0))
	gt.NoError(t, uc.Mute.Lift(ctx, testCommunity, "U-LOUD"))
	gt.Array(t, chatSvc.unmuted).Length(1)

	// Lifting an unknown mute is a no-op.
	gt.NoError(t, uc.Mute.Lift(ctx, testCommunity, "U-LOUD"))
	gt.Array(t, chatSvc.unmuted).Length(1)
}
