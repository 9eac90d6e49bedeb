package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/repository/memory"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/usecase"
)

const (
	testAuditChannel = types.ChannelID("C-AUDIT")
	testHomeChannel  = types.ChannelID("C-HOME")
	testOwner        = types.UserID("U-OWNER")
	testCommunity    = types.CommunityID("T-COMMUNITY")
)

func testPolicy() usecase.Policy {
	return usecase.Policy{
		AuditChannel: testAuditChannel,
		OwnerUser:    testOwner,
		HomeChannel:  testHomeChannel,
	}
}

func banRequest() *model.ActionRequest {
	return &model.ActionRequest{
		Kind:        types.ActionKindBan,
		ActorID:     "U-MOD",
		TargetID:    "U-TARGET",
		Reason:      "spamming invite links",
		CommunityID: testCommunity,
		ChannelID:   "C-GENERAL",
	}
}

func TestLedgerRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("overseen kind produces two cards", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		actionID, err := uc.Ledger.Record(ctx, banRequest())
		gt.NoError(t, err)
		gt.Value(t, actionID == "").Equal(false)

		action, err := repo.Action().Get(ctx, actionID)
		gt.NoError(t, err).Required()
		gt.Value(t, action.Kind).Equal(types.ActionKindBan)
		gt.Value(t, action.Status).Equal(types.ActionStatusPending)
		gt.Value(t, action.InPlaceCardID == "").Equal(false)
		gt.Value(t, action.AuditCardID == "").Equal(false)

		gt.Array(t, chatSvc.postedTo("C-GENERAL")).Length(1)
		gt.Array(t, chatSvc.postedTo(testAuditChannel)).Length(1)
	})

	t.Run("excluded kind is ignored without side effects", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		req := banRequest()
		req.Kind = types.ActionKindMute

		actionID, err := uc.Ledger.Record(ctx, req)
		gt.NoError(t, err)
		gt.Value(t, actionID).Equal("")

		actions, err := repo.Action().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, actions).Length(0)
		gt.Array(t, chatSvc.posted).Length(0)
	})

	t.Run("invalid kind is rejected", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, newMockChatService(), recorder.New(), nil, testPolicy())

		req := banRequest()
		req.Kind = types.ActionKind("defenestrate")

		_, err := uc.Ledger.Record(ctx, req)
		gt.Error(t, err)
	})

	t.Run("context snapshot comes from the recorder", func(t *testing.T) {
		repo := memory.New()
		rec := recorder.New()
		uc := usecase.New(repo, newMockChatService(), rec, nil, testPolicy())

		for i := 0; i < 3; i++ {
			rec.Observe(ctx, &model.Message{
				ID:        types.MessageID(string(rune('a' + i))),
				ChannelID: "C-GENERAL",
				AuthorID:  "U-CHATTER",
				Text:      "hello",
			})
		}

		actionID, err := uc.Ledger.Record(ctx, banRequest())
		gt.NoError(t, err)

		action, err := repo.Action().Get(ctx, actionID)
		gt.NoError(t, err).Required()
		gt.Array(t, action.Context).Length(3)
	})
}

func TestLedgerTamperEscalation(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (interfaces.Repository, *usecase.UseCases, *mockChatService, *model.ModerationAction) {
		t.Helper()
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		actionID, err := uc.Ledger.Record(ctx, banRequest())
		gt.NoError(t, err).Required()
		action, err := repo.Action().Get(ctx, actionID)
		gt.NoError(t, err).Required()
		return repo, uc, chatSvc, action
	}

	t.Run("first deletion raises yellow", func(t *testing.T) {
		repo, uc, chatSvc, action := setup(t)

		gt.NoError(t, uc.Ledger.OnCardDeleted(ctx, action.InPlaceCardID))

		refreshed, err := repo.Action().Get(ctx, action.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, refreshed.HasFlag(types.TamperFlagInPlaceDeleted)).Equal(true)
		gt.Value(t, refreshed.HasFlag(types.TamperFlagYellow)).Equal(true)
		gt.Value(t, refreshed.HasFlag(types.TamperFlagRed)).Equal(false)

		// The surviving audit card is refreshed with the new flags.
		gt.Array(t, chatSvc.updated).Length(1)
		gt.Value(t, chatSvc.updated[0].CardID).Equal(action.AuditCardID)
	})

	t.Run("both deletions raise red and keep yellow", func(t *testing.T) {
		repo, uc, _, action := setup(t)

		gt.NoError(t, uc.Ledger.OnCardDeleted(ctx, action.InPlaceCardID))
		gt.NoError(t, uc.Ledger.OnCardDeleted(ctx, action.AuditCardID))

		refreshed, err := repo.Action().Get(ctx, action.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, refreshed.HasFlag(types.TamperFlagInPlaceDeleted)).Equal(true)
		gt.Value(t, refreshed.HasFlag(types.TamperFlagAuditDeleted)).Equal(true)
		gt.Value(t, refreshed.HasFlag(types.TamperFlagRed)).Equal(true)
		gt.Value(t, refreshed.HasFlag(types.TamperFlagYellow)).Equal(true)
	})

	t.Run("unknown card is a no-op", func(t *testing.T) {
		_, uc, chatSvc, _ := setup(t)

		gt.NoError(t, uc.Ledger.OnCardDeleted(ctx, "9999999999.000000"))
		gt.Array(t, chatSvc.updated).Length(0)
	})
}

func TestLedgerApprove(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	chatSvc := newMockChatService()
	uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

	actionID, err := uc.Ledger.Record(ctx, banRequest())
	gt.NoError(t, err).Required()

	t.Run("approve drops the record", func(t *testing.T) {
		done, err := uc.Ledger.Approve(ctx, actionID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(true)

		actions, err := repo.Action().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, actions).Length(0)
	})

	t.Run("second approve is a clean no-op", func(t *testing.T) {
		done, err := uc.Ledger.Approve(ctx, actionID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(false)
	})
}

func TestLedgerRevert(t *testing.T) {
	ctx := context.Background()

	t.Run("reverting a ban unbans and issues an invite", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		actionID, err := uc.Ledger.Record(ctx, banRequest())
		gt.NoError(t, err).Required()

		done, err := uc.Ledger.Revert(ctx, actionID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(true)

		gt.Array(t, chatSvc.unbanned).Length(1)
		gt.Value(t, chatSvc.unbanned[0]).Equal("U-TARGET")
		gt.Array(t, chatSvc.invitesCreated).Length(1)
		gt.Array(t, chatSvc.dms).Length(1)
		gt.Value(t, chatSvc.dms[0].UserID).Equal("U-TARGET")

		invites, err := repo.Invite().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, invites).Length(1)
		gt.Value(t, invites[0].UserID).Equal(types.UserID("U-TARGET"))
		gt.Value(t, invites[0].Consumed).Equal(false)

		actions, err := repo.Action().List(ctx)
		gt.NoError(t, err)
		gt.Array(t, actions).Length(0)
	})

	t.Run("platform failure aborts and leaves the action pending", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		chatSvc.unbanFn = func(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
			return goerr.New("platform unavailable")
		}
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		actionID, err := uc.Ledger.Record(ctx, banRequest())
		gt.NoError(t, err).Required()

		done, err := uc.Ledger.Revert(ctx, actionID)
		gt.Error(t, err)
		gt.Value(t, done).Equal(false)

		action, err := repo.Action().Get(ctx, actionID)
		gt.NoError(t, err).Required()
		gt.Value(t, action.Status).Equal(types.ActionStatusPending)
	})

	t.Run("reverting a kick resolves without a platform call", func(t *testing.T) {
		repo := memory.New()
		chatSvc := newMockChatService()
		uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

		req := banRequest()
		req.Kind = types.ActionKindKick
		actionID, err := uc.Ledger.Record(ctx, req)
		gt.NoError(t, err).Required()

		done, err := uc.Ledger.Revert(ctx, actionID)
		gt.NoError(t, err)
		gt.Value(t, done).Equal(true)
		gt.Array(t, chatSvc.unbanned).Length(0)
		gt.Array(t, chatSvc.invitesCreated).Length(0)
	})
}

func TestLedgerResolveManual(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	chatSvc := newMockChatService()
	uc := usecase.New(repo, chatSvc, recorder.New(), nil, testPolicy())

	_, err := uc.Ledger.Record(ctx, banRequest())
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Ledger.ResolveManual(ctx, testCommunity, "U-TARGET", types.ActionKindBan))

	actions, err := repo.Action().List(ctx)
	gt.NoError(t, err)
	gt.Array(t, actions).Length(0)
}
