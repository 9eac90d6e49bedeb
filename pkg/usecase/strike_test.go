package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/repository/memory"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/usecase"
)

func TestStrikes(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(repo, newMockChatService(), recorder.New(), nil, testPolicy())

	t.Run("strikes accumulate", func(t *testing.T) {
		n, err := uc.Strike.Add(ctx, testCommunity, "U-TROUBLE", "first offense")
		gt.NoError(t, err)
		gt.Value(t, n).Equal(1)

		n, err = uc.Strike.Add(ctx, testCommunity, "U-TROUBLE", "second offense")
		gt.NoError(t, err)
		gt.Value(t, n).Equal(2)

		history, err := uc.Strike.History(ctx, testCommunity, "U-TROUBLE")
		gt.NoError(t, err)
		gt.Array(t, history).Length(2)
		gt.Value(t, history[0].Reason).Equal("first offense")
	})

	t.Run("count is zero for clean users", func(t *testing.T) {
		n, err := uc.Strike.Count(ctx, testCommunity, "U-SAINT")
		gt.NoError(t, err)
		gt.Value(t, n).Equal(0)
	})

	t.Run("clear removes everything", func(t *testing.T) {
		gt.NoError(t, uc.Strike.Clear(ctx, testCommunity, "U-TROUBLE"))

		n, err := uc.Strike.Count(ctx, testCommunity, "U-TROUBLE")
		gt.NoError(t, err)
		gt.Value(t, n).Equal(0)

		// Clearing again is a no-op.
		gt.NoError(t, uc.Strike.Clear(ctx, testCommunity, "U-TROUBLE"))
	})
}
