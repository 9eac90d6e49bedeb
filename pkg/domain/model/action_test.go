package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

func newAction(t *testing.T) *model.ModerationAction {
	t.Helper()
	action := model.NewModerationAction(&model.ActionRequest{
		Kind:        types.ActionKindBan,
		ActorID:     "U-MOD",
		TargetID:    "U-TARGET",
		Reason:      "spam",
		CommunityID: "T1",
		ChannelID:   "C1",
	}, nil, time.Now().UTC())
	action.RegisterCard(types.CardLocationInPlace, "100.100")
	action.RegisterCard(types.CardLocationAudit, "100.200")
	return action
}

func TestTamperFlagEscalation(t *testing.T) {
	t.Run("one deleted card raises yellow", func(t *testing.T) {
		action := newAction(t)
		action.MarkCardDeleted(types.CardLocationInPlace)

		gt.Value(t, action.HasFlag(types.TamperFlagInPlaceDeleted)).Equal(true)
		gt.Value(t, action.HasFlag(types.TamperFlagYellow)).Equal(true)
		gt.Value(t, action.HasFlag(types.TamperFlagRed)).Equal(false)
		gt.Value(t, action.Tampered()).Equal(true)
	})

	t.Run("both deleted cards raise red without clearing yellow", func(t *testing.T) {
		action := newAction(t)
		action.MarkCardDeleted(types.CardLocationInPlace)
		action.MarkCardDeleted(types.CardLocationAudit)

		gt.Value(t, action.HasFlag(types.TamperFlagInPlaceDeleted)).Equal(true)
		gt.Value(t, action.HasFlag(types.TamperFlagAuditDeleted)).Equal(true)
		gt.Value(t, action.HasFlag(types.TamperFlagRed)).Equal(true)
		gt.Value(t, action.HasFlag(types.TamperFlagYellow)).Equal(true)
	})

	t.Run("marking the same card twice does not duplicate flags", func(t *testing.T) {
		action := newAction(t)
		action.MarkCardDeleted(types.CardLocationInPlace)
		action.MarkCardDeleted(types.CardLocationInPlace)

		gt.Array(t, action.Flags).Length(2)
		gt.Value(t, action.HasFlag(types.TamperFlagRed)).Equal(false)
	})
}

func TestRegisterCard(t *testing.T) {
	t.Run("registration is idempotent per location", func(t *testing.T) {
		action := newAction(t)
		action.RegisterCard(types.CardLocationInPlace, "999.999")
		gt.Value(t, action.InPlaceCardID).Equal("100.100")
	})

	t.Run("card location lookup", func(t *testing.T) {
		action := newAction(t)

		loc, ok := action.CardLocation("100.100")
		gt.Value(t, ok).Equal(true)
		gt.Value(t, loc).Equal(types.CardLocationInPlace)

		loc, ok = action.CardLocation("100.200")
		gt.Value(t, ok).Equal(true)
		gt.Value(t, loc).Equal(types.CardLocationAudit)

		_, ok = action.CardLocation("777.777")
		gt.Value(t, ok).Equal(false)
	})
}

func TestActionIDDerivation(t *testing.T) {
	now := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	a := model.NewModerationAction(&model.ActionRequest{
		Kind:        types.ActionKindKick,
		ActorID:     "U-MOD",
		CommunityID: "T1",
	}, nil, now)
	b := model.NewModerationAction(&model.ActionRequest{
		Kind:        types.ActionKindKick,
		ActorID:     "U-MOD",
		CommunityID: "T1",
	}, nil, now.Add(time.Nanosecond))

	gt.Value(t, a.ID == b.ID).Equal(false)
	gt.Value(t, a.Status).Equal(types.ActionStatusPending)
}
