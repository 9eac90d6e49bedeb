package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// ModerationAction is one recorded moderation act under owner review.
// It is created when a command handler reports a platform-level action,
// mutated by the tamper detector (flags) and by owner review (status), and
// leaves the pending set once the status is no longer pending.
type ModerationAction struct {
	ID              types.ActionID    `json:"id"`
	Kind            types.ActionKind  `json:"kind"`
	ActorID         types.UserID      `json:"actor_id"`
	TargetID        types.UserID      `json:"target_id,omitempty"` // empty for purge/lock
	Reason          string            `json:"reason"`
	CommunityID     types.CommunityID `json:"community_id"`
	ChannelID       types.ChannelID   `json:"channel_id,omitempty"`
	SourceMessageID types.MessageID   `json:"source_message_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`

	// Context is the immutable snapshot of surrounding conversation taken
	// at creation time.
	Context []ContextMessage `json:"context,omitempty"`

	Flags         []types.TamperFlag `json:"flags,omitempty"`
	InPlaceCardID types.CardID       `json:"in_place_card_id,omitempty"`
	AuditCardID   types.CardID       `json:"audit_card_id,omitempty"`
	Status        types.ActionStatus `json:"status"`
}

// NewModerationAction builds a pending action from a reported request and a
// context snapshot. The identifier is derived from community, kind and
// creation time so it is unique without shared counters.
func NewModerationAction(req *ActionRequest, snapshot []ContextMessage, now time.Time) *ModerationAction {
	return &ModerationAction{
		ID:              types.ActionID(fmt.Sprintf("%s/%s/%d", req.CommunityID, req.Kind, now.UnixNano())),
		Kind:            req.Kind,
		ActorID:         req.ActorID,
		TargetID:        req.TargetID,
		Reason:          req.Reason,
		CommunityID:     req.CommunityID,
		ChannelID:       req.ChannelID,
		SourceMessageID: req.SourceMessageID,
		CreatedAt:       now,
		Context:         snapshot,
		Status:          types.ActionStatusPending,
	}
}

// HasFlag reports whether the given tamper flag is set.
func (a *ModerationAction) HasFlag(flag types.TamperFlag) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func (a *ModerationAction) addFlag(flag types.TamperFlag) {
	if !a.HasFlag(flag) {
		a.Flags = append(a.Flags, flag)
	}
}

// RegisterCard attaches a rendered card identifier. It is idempotent per
// location: a card already registered for the location is left in place.
func (a *ModerationAction) RegisterCard(loc types.CardLocation, cardID types.CardID) {
	switch loc {
	case types.CardLocationInPlace:
		if a.InPlaceCardID == "" {
			a.InPlaceCardID = cardID
		}
	case types.CardLocationAudit:
		if a.AuditCardID == "" {
			a.AuditCardID = cardID
		}
	}
}

// CardLocation returns which of the two registered cards matches the given
// identifier, or false if neither does.
func (a *ModerationAction) CardLocation(cardID types.CardID) (types.CardLocation, bool) {
	switch {
	case a.InPlaceCardID != "" && a.InPlaceCardID == cardID:
		return types.CardLocationInPlace, true
	case a.AuditCardID != "" && a.AuditCardID == cardID:
		return types.CardLocationAudit, true
	default:
		return "", false
	}
}

// MarkCardDeleted records the deletion of one of the review cards and
// escalates the tamper flags. Flags only ever accumulate: one deleted card
// raises yellow, both raise red. Red implies both deletion flags.
func (a *ModerationAction) MarkCardDeleted(loc types.CardLocation) {
	switch loc {
	case types.CardLocationInPlace:
		a.addFlag(types.TamperFlagInPlaceDeleted)
	case types.CardLocationAudit:
		a.addFlag(types.TamperFlagAuditDeleted)
	default:
		return
	}

	if a.HasFlag(types.TamperFlagInPlaceDeleted) && a.HasFlag(types.TamperFlagAuditDeleted) {
		a.addFlag(types.TamperFlagRed)
	} else {
		a.addFlag(types.TamperFlagYellow)
	}
}

// Tampered reports whether any review card of this action has been deleted.
func (a *ModerationAction) Tampered() bool {
	return len(a.Flags) > 0
}
