package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/service/chat"
	"github.com/secmon-lab/warden/pkg/service/recorder"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// contextSnapshotSize is how many surrounding messages an action snapshot
// captures from the recorder.
const contextSnapshotSize = 25

// LedgerUseCase owns the moderation action lifecycle: creation with context
// snapshot and review cards, tamper-flag escalation, approval and reversion.
type LedgerUseCase struct {
	repo     interfaces.Repository
	chatSvc  chat.Service
	recorder *recorder.Recorder
	policy   Policy
}

func NewLedgerUseCase(repo interfaces.Repository, chatSvc chat.Service, rec *recorder.Recorder, policy Policy) *LedgerUseCase {
	return &LedgerUseCase{
		repo:     repo,
		chatSvc:  chatSvc,
		recorder: rec,
		policy:   policy,
	}
}

// Record registers a reported moderation action for oversight. Kinds outside
// the oversight set are ignored without side effects and return an empty ID.
// Persistence is best-effort: a failed flush is logged and the in-memory
// record still counts.
func (uc *LedgerUseCase) Record(ctx context.Context, req *model.ActionRequest) (types.ActionID, error) {
	if !req.Kind.IsValid() {
		return "", goerr.Wrap(ErrInvalidKind, "cannot record action", goerr.V("kind", req.Kind))
	}
	if !req.Kind.Overseen() {
		return "", nil
	}

	var snapshot []model.ContextMessage
	if uc.recorder != nil && req.ChannelID != "" {
		snapshot = uc.recorder.Window(req.ChannelID, req.SourceMessageID, contextSnapshotSize)
	}

	action := model.NewModerationAction(req, snapshot, time.Now().UTC())
	if err := uc.repo.Action().Put(ctx, action); err != nil {
		errutil.Handle(ctx, err, "failed to persist recorded action")
	}

	uc.renderCards(ctx, action)

	logging.From(ctx).Info("moderation action recorded",
		"action_id", action.ID,
		"kind", action.Kind,
		"actor_id", action.ActorID,
		"target_id", action.TargetID,
	)

	return action.ID, nil
}

// renderCards posts the in-place and audit review cards and registers their
// identifiers for deletion monitoring. Posting is best-effort per card.
func (uc *LedgerUseCase) renderCards(ctx context.Context, action *model.ModerationAction) {
	if uc.chatSvc == nil {
		return
	}

	fallback := fmt.Sprintf("Moderation action: %s", action.Kind)

	if action.ChannelID != "" {
		cardID, err := uc.chatSvc.PostMessage(ctx, action.ChannelID, buildInPlaceCardBlocks(action), fallback)
		if err != nil {
			errutil.Handle(ctx, err, "failed to post in-place review card")
		} else {
			uc.registerCard(ctx, action, types.CardLocationInPlace, cardID)
		}
	}

	cardID, err := uc.chatSvc.PostMessage(ctx, uc.policy.AuditChannel, buildAuditCardBlocks(action), fallback)
	if err != nil {
		errutil.Handle(ctx, err, "failed to post audit review card")
	} else {
		uc.registerCard(ctx, action, types.CardLocationAudit, cardID)
	}
}

func (uc *LedgerUseCase) registerCard(ctx context.Context, action *model.ModerationAction, loc types.CardLocation, cardID types.CardID) {
	action.RegisterCard(loc, cardID)
	if err := uc.repo.Action().Put(ctx, action); err != nil {
		errutil.Handle(ctx, err, "failed to persist card registration")
	}
}

// RegisterCard attaches an externally rendered card to an action. It is
// idempotent per location.
func (uc *LedgerUseCase) RegisterCard(ctx context.Context, actionID types.ActionID, cardID types.CardID, loc types.CardLocation) error {
	action, err := uc.repo.Action().Get(ctx, actionID)
	if err != nil {
		return goerr.Wrap(ErrActionNotFound, "cannot register card", goerr.V(ActionIDKey, actionID))
	}

	action.RegisterCard(loc, cardID)
	if err := uc.repo.Action().Put(ctx, action); err != nil {
		errutil.Handle(ctx, err, "failed to persist card registration")
	}
	return nil
}

// OnCardDeleted escalates the tamper flags of the action owning the deleted
// card. Unknown cards (already resolved or foreign messages) are a no-op.
func (uc *LedgerUseCase) OnCardDeleted(ctx context.Context, cardID types.CardID) error {
	action, err := uc.repo.Action().FindByCardID(ctx, cardID)
	if err != nil {
		return goerr.Wrap(err, "failed to look up action by card", goerr.V(CardIDKey, cardID))
	}
	if action == nil {
		return nil
	}

	loc, ok := action.CardLocation(cardID)
	if !ok {
		return nil
	}

	action.MarkCardDeleted(loc)
	if err := uc.repo.Action().Put(ctx, action); err != nil {
		errutil.Handle(ctx, err, "failed to persist tamper flags")
	}

	logging.From(ctx).Warn("review card deleted",
		"action_id", action.ID,
		"card_location", loc,
		"flags", action.Flags,
	)

	// Refresh the surviving audit card so the owner sees the escalation.
	if loc != types.CardLocationAudit && action.AuditCardID != "" && uc.chatSvc != nil {
		fallback := fmt.Sprintf("Moderation action: %s", action.Kind)
		if err := uc.chatSvc.UpdateMessage(ctx, uc.policy.AuditChannel, action.AuditCardID, buildAuditCardBlocks(action), fallback); err != nil {
			errutil.Handle(ctx, err, "failed to refresh audit card flags")
		}
	}

	return nil
}

// Approve closes the review loop for an action. There is no platform side
// effect: the record is simply dropped. Returns false for unknown IDs.
func (uc *LedgerUseCase) Approve(ctx context.Context, actionID types.ActionID) (bool, error) {
	action, err := uc.repo.Action().Get(ctx, actionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get action", goerr.V(ActionIDKey, actionID))
	}

	action.Status = types.ActionStatusApproved
	uc.resolveCards(ctx, action)

	if err := uc.repo.Action().Delete(ctx, actionID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		errutil.Handle(ctx, err, "failed to drop approved action")
	}

	logging.From(ctx).Info("moderation action approved", "action_id", actionID)
	return true, nil
}

// Revert undoes a reviewed action where the platform allows it. Platform
// failure aborts the revert and leaves the action pending for retry. A kick
// cannot be undone: the record is resolved without a platform side effect.
func (uc *LedgerUseCase) Revert(ctx context.Context, actionID types.ActionID) (bool, error) {
	action, err := uc.repo.Action().Get(ctx, actionID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get action", goerr.V(ActionIDKey, actionID))
	}

	switch action.Kind {
	case types.ActionKindBan, types.ActionKindSoftban:
		// A softban is a ban plus message purge, so lifting it is the same
		// unban-and-invite path. The purged messages stay gone.
		if err := uc.revertBan(ctx, action); err != nil {
			return false, err
		}

	case types.ActionKindMute:
		if err := uc.revertMute(ctx, action); err != nil {
			return false, err
		}

	case types.ActionKindKick:
		// A kick cannot be undone; the record is resolved as-is. The audit
		// note is bookkeeping, not an operation against the member.
		uc.auditNote(ctx, fmt.Sprintf("Kick of <@%s> was marked reverted; a kick has no platform-level undo.", action.TargetID))

	default:
		// lock, purge: nothing to undo at the platform level.
	}

	action.Status = types.ActionStatusReverted
	uc.resolveCards(ctx, action)

	if err := uc.repo.Action().Delete(ctx, actionID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		errutil.Handle(ctx, err, "failed to drop reverted action")
	}

	logging.From(ctx).Info("moderation action reverted", "action_id", actionID, "kind", action.Kind)
	return true, nil
}

func (uc *LedgerUseCase) revertBan(ctx context.Context, action *model.ModerationAction) error {
	if uc.chatSvc == nil {
		return goerr.New("chat service is not configured")
	}

	if err := uc.chatSvc.Unban(ctx, action.CommunityID, action.TargetID); err != nil {
		return goerr.Wrap(err, "failed to unban, revert aborted",
			goerr.V(ActionIDKey, action.ID), goerr.V(TargetIDKey, action.TargetID))
	}

	uc.issueRejoinInvite(ctx, action.CommunityID, action.TargetID)

	if err := uc.chatSvc.SendDM(ctx, action.TargetID,
		fmt.Sprintf("Your ban was reviewed and reverted. You may rejoin via the invitation issued for you. Reason on record: %s", action.Reason)); err != nil {
		errutil.Handle(ctx, err, "failed to notify target of revert")
	}

	uc.auditNote(ctx, fmt.Sprintf("Ban of <@%s> reverted after review (action %s).", action.TargetID, action.ID))
	return nil
}

func (uc *LedgerUseCase) revertMute(ctx context.Context, action *model.ModerationAction) error {
	if uc.chatSvc == nil {
		return goerr.New("chat service is not configured")
	}

	if err := uc.chatSvc.Unmute(ctx, action.CommunityID, action.TargetID); err != nil {
		return goerr.Wrap(err, "failed to unmute, revert aborted",
			goerr.V(ActionIDKey, action.ID), goerr.V(TargetIDKey, action.TargetID))
	}

	if err := uc.repo.Mute().Delete(ctx, action.CommunityID, action.TargetID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		errutil.Handle(ctx, err, "failed to drop mute record on revert")
	}

	if err := uc.chatSvc.SendDM(ctx, action.TargetID, "Your mute was reviewed and lifted."); err != nil {
		errutil.Handle(ctx, err, "failed to notify target of unmute")
	}

	uc.auditNote(ctx, fmt.Sprintf("Mute of <@%s> reverted after review (action %s).", action.TargetID, action.ID))
	return nil
}

// issueRejoinInvite creates a single-use invitation and books it in the
// invite ledger. Best-effort: a failed invite does not undo the unban.
func (uc *LedgerUseCase) issueRejoinInvite(ctx context.Context, communityID types.CommunityID, userID types.UserID) {
	if _, err := uc.chatSvc.CreateRejoinInvite(ctx, uc.policy.HomeChannel, userID); err != nil {
		errutil.Handle(ctx, err, "failed to create rejoin invite")
		return
	}

	rec := model.NewInviteRecord(userID, communityID, uc.policy.HomeChannel, time.Now().UTC())
	if err := uc.repo.Invite().Put(ctx, rec); err != nil {
		errutil.Handle(ctx, err, "failed to persist invite record")
	}
}

// ResolveManual drops any pending action matching target and kind, for when
// staff reverse an action outside the review flow. Prevents a stale card
// from being reviewed against an action that no longer applies.
func (uc *LedgerUseCase) ResolveManual(ctx context.Context, communityID types.CommunityID, targetID types.UserID, kind types.ActionKind) error {
	actions, err := uc.repo.Action().FindByTarget(ctx, communityID, targetID, kind)
	if err != nil {
		return goerr.Wrap(err, "failed to find actions for manual resolution",
			goerr.V(TargetIDKey, targetID), goerr.V("kind", kind))
	}

	for _, action := range actions {
		// The reversal already happened on the platform, so the card just
		// loses its controls.
		action.Status = types.ActionStatusReverted
		uc.resolveCards(ctx, action)
		if err := uc.repo.Action().Delete(ctx, action.ID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			errutil.Handle(ctx, err, "failed to drop manually resolved action")
			continue
		}
		logging.From(ctx).Info("moderation action resolved manually",
			"action_id", action.ID, "kind", kind, "target_id", targetID)
	}

	return nil
}

// resolveCards rewrites both review cards without controls so a resolved
// action can no longer be acted on. Best-effort.
func (uc *LedgerUseCase) resolveCards(ctx context.Context, action *model.ModerationAction) {
	if uc.chatSvc == nil {
		return
	}

	fallback := fmt.Sprintf("Moderation action %s: %s", action.Status, action.Kind)
	if action.AuditCardID != "" {
		if err := uc.chatSvc.UpdateMessage(ctx, uc.policy.AuditChannel, action.AuditCardID, buildAuditCardBlocks(action), fallback); err != nil {
			errutil.Handle(ctx, err, "failed to update audit card on resolution")
		}
	}
	if action.InPlaceCardID != "" && action.ChannelID != "" {
		if err := uc.chatSvc.UpdateMessage(ctx, action.ChannelID, action.InPlaceCardID, buildInPlaceCardBlocks(action), fallback); err != nil {
			errutil.Handle(ctx, err, "failed to update in-place card on resolution")
		}
	}
}

func (uc *LedgerUseCase) auditNote(ctx context.Context, text string) {
	if uc.chatSvc == nil {
		return
	}
	if _, err := uc.chatSvc.PostMessage(ctx, uc.policy.AuditChannel, nil, text); err != nil {
		errutil.Handle(ctx, err, "failed to post audit note")
	}
}
