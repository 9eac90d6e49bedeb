package usecase

import (
	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/service/chat"
	"github.com/secmon-lab/warden/pkg/service/mediacache"
	"github.com/secmon-lab/warden/pkg/service/recorder"
)

// Policy carries the reviewed-moderation knobs the use cases need: where
// audit output goes, who owns review, and the report card cap.
type Policy struct {
	AuditChannel types.ChannelID
	OwnerUser    types.UserID
	HomeChannel  types.ChannelID

	// ReportCardLimit caps how many action and appeal cards one owner
	// report cycle renders. Entries beyond the cap stay pending and are
	// only visible through the summary counts.
	ReportCardLimit int
}

// DefaultReportCardLimit is the per-cycle card cap of the owner report.
const DefaultReportCardLimit = 10

// UseCases bundles the oversight core's entry points.
type UseCases struct {
	Ledger *LedgerUseCase
	Appeal *AppealUseCase
	Event  *EventUseCase
	Report *ReportUseCase
	Mute   *MuteUseCase
	Strike *StrikeUseCase
	Role   *RoleUseCase
	Invite *InviteUseCase
}

// New wires the use cases together.
func New(repo interfaces.Repository, chatSvc chat.Service, rec *recorder.Recorder, cache *mediacache.Cache, policy Policy) *UseCases {
	if policy.ReportCardLimit <= 0 {
		policy.ReportCardLimit = DefaultReportCardLimit
	}

	ledger := NewLedgerUseCase(repo, chatSvc, rec, policy)

	return &UseCases{
		Ledger: ledger,
		Appeal: NewAppealUseCase(repo, chatSvc, policy),
		Event:  NewEventUseCase(ledger, rec, cache, chatSvc, policy),
		Report: NewReportUseCase(repo, chatSvc, policy),
		Mute:   NewMuteUseCase(repo, chatSvc),
		Strike: NewStrikeUseCase(repo),
		Role:   NewRoleUseCase(repo, chatSvc),
		Invite: NewInviteUseCase(repo, chatSvc),
	}
}
