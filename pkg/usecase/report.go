package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/service/chat"
	"github.com/secmon-lab/warden/pkg/utils/errutil"
	"github.com/secmon-lab/warden/pkg/utils/logging"
)

// ReportUseCase assembles the periodic owner report: a DM with pending
// counts, plus review cards rendered into the audit channel up to the
// configured cap.
type ReportUseCase struct {
	repo    interfaces.Repository
	chatSvc chat.Service
	policy  Policy
}

func NewReportUseCase(repo interfaces.Repository, chatSvc chat.Service, policy Policy) *ReportUseCase {
	return &ReportUseCase{
		repo:    repo,
		chatSvc: chatSvc,
		policy:  policy,
	}
}

// Run builds and delivers one report cycle. With nothing pending the owner
// gets a short all-clear DM and no cards are rendered.
func (uc *ReportUseCase) Run(ctx context.Context) error {
	if uc.chatSvc == nil {
		return goerr.New("chat service is not configured")
	}

	actions, err := uc.repo.Action().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list pending actions")
	}
	appeals, err := uc.repo.Appeal().List(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list pending appeals")
	}

	tampered := 0
	for _, a := range actions {
		if a.Tampered() {
			tampered++
		}
	}

	if len(actions) == 0 && len(appeals) == 0 {
		if err := uc.chatSvc.SendDM(ctx, uc.policy.OwnerUser, "Moderation report: nothing pending review."); err != nil {
			return goerr.Wrap(err, "failed to send all-clear report")
		}
		return nil
	}

	summary := fmt.Sprintf("Moderation report: %d action(s) pending review (%d with deleted cards), %d appeal(s) pending.",
		len(actions), tampered, len(appeals))
	if len(actions) > uc.policy.ReportCardLimit || len(appeals) > uc.policy.ReportCardLimit {
		summary += fmt.Sprintf(" Showing the first %d in <#%s>.", uc.policy.ReportCardLimit, uc.policy.AuditChannel)
	}

	if err := uc.chatSvc.SendDM(ctx, uc.policy.OwnerUser, summary); err != nil {
		return goerr.Wrap(err, "failed to send report summary")
	}

	// The cap applies to each set independently. Entries beyond it stay
	// pending and only show up in the summary counts.
	rendered := 0
	for i, action := range actions {
		if i >= uc.policy.ReportCardLimit {
			break
		}
		fallback := fmt.Sprintf("Pending moderation action: %s", action.Kind)
		if _, err := uc.chatSvc.PostMessage(ctx, uc.policy.AuditChannel, buildAuditCardBlocks(action), fallback); err != nil {
			errutil.Handle(ctx, err, "failed to post report action card")
			continue
		}
		rendered++
	}
	for i, appeal := range appeals {
		if i >= uc.policy.ReportCardLimit {
			break
		}
		fallback := fmt.Sprintf("Pending appeal from <@%s>", appeal.UserID)
		if _, err := uc.chatSvc.PostMessage(ctx, uc.policy.AuditChannel, buildAppealCardBlocks(appeal), fallback); err != nil {
			errutil.Handle(ctx, err, "failed to post report appeal card")
			continue
		}
		rendered++
	}

	logging.From(ctx).Info("owner report delivered",
		"pending_actions", len(actions),
		"pending_appeals", len(appeals),
		"tampered", tampered,
		"cards_rendered", rendered,
	)
	return nil
}

// Owner returns the reviewing owner's user ID.
func (uc *ReportUseCase) Owner() types.UserID {
	return uc.policy.OwnerUser
}

// PendingCounts reports how much work awaits review, for status surfaces.
func (uc *ReportUseCase) PendingCounts(ctx context.Context) (actions int, appeals int, err error) {
	as, err := uc.repo.Action().List(ctx)
	if err != nil {
		return 0, 0, goerr.Wrap(err, "failed to list pending actions")
	}
	aps, err := uc.repo.Appeal().List(ctx)
	if err != nil {
		return 0, 0, goerr.Wrap(err, "failed to list pending appeals")
	}
	return len(as), len(aps), nil
}
