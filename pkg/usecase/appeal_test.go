package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/repository/memory"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/usecase"
)

func TestAppealSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("blank text is rejected", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, newMockChatService(), recorder.New(), nil, testPolicy())

		_, err := uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "   ")
		gt.Error(t, err)
		gt.Value(t, errors.Is(err, usecase.ErrEmptyAppeal)).Equal(true)
	})

	t.Run("submission renders a card in the audit channel", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		appealID, err := uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "it was a misunderstanding")
		gt.NoError(t, err)
		gt.Value(t, appealID == "").Equal(false)

		appeals, err := repo.Appeal().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, appeals).Length(1)
		gt.Value(t, appeals[0].Status).Equal(types.AppealStatusPending)

		gt.Array(t, chatSvc.postedTo(testAuditChannel)).Length(1)
	})

	t.Run("resubmission replaces the pending text", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, newMockChatService(), recorder.New(), nil, testPolicy())

		first, err := uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "first try")
		gt.NoError(t, err)
		second, err := uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "second try")
		gt.NoError(t, err)
		gt.Value(t, second).Equal(first)

		appeals, err := repo.Appeal().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, appeals).Length(1)
		gt.Value(t, appeals[0].Text).Equal("second try")
	})
}

func TestAppealReview(t *testing.T) {
	ctx := context.Background()

	t.Run("approval unbans, invites and notifies", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		appealID, err := uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "please")
		gt.NoError(t, err).Required()

		done, err := uc.Appeal.Approve(ctx, appealID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(true)

		gt.Array(t, chatSvc.unbanned).Length(1)
		gt.Value(t, chatSvc.unbanned[0]).Equal("U-BANNED")
		gt.Array(t, chatSvc.invitesCreated).Length(1)
		gt.Array(t, chatSvc.dms).Length(1)

		// submission card plus the approval audit note
		audit := chatSvc.postedTo(testAuditChannel)
		gt.Array(t, audit).Length(2)
		gt.Value(t, strings.Contains(audit[1].Text, "accepted")).Equal(true)

		invites, err := repo.Invite().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, invites).Length(1)

		appeals, err := repo.Appeal().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, appeals).Length(0)
	})

	t.Run("second approval is a clean no-op", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		appealID, err := uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "please")
		gt.NoError(t, err).Required()

		done, err := uc.Appeal.Approve(ctx, appealID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(true)

		done, err = uc.Appeal.Approve(ctx, appealID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(false)
		gt.Array(t, chatSvc.unbanned).Length(1)
	})

	t.Run("denial notifies without platform effects", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		appealID, err := uc.Appeal.Submit(ctx, testCommunity, "U-BANNED", "please")
		gt.NoError(t, err).Required()

		done, err := uc.Appeal.Deny(ctx, appealID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(true)

		gt.Array(t, chatSvc.unbanned).Length(0)
		gt.Array(t, chatSvc.invitesCreated).Length(0)
		gt.Array(t, chatSvc.dms).Length(1)

		appeals, err := repo.Appeal().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, appeals).Length(0)
	})

	t.Run("unknown appeal returns false", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, newMockChatService(), recorder.New(), nil, testPolicy())

		done, err := uc.Appeal.Deny(ctx, "T-X/U-X/123")
		gt.NoError(t, err)
		gt.Value(t, done).Equal(false)
	})
}
