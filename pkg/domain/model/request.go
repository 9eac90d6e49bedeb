package model

import (
	"github.com/secmon-lab/warden/pkg/domain/types"
)

// ActionRequest is what a command handler reports after a platform-level
// moderation call has succeeded. Kinds outside the oversight set are
// accepted and ignored by the ledger.
type ActionRequest struct {
	Kind            types.ActionKind
	ActorID         types.UserID
	TargetID        types.UserID // optional: purge and lock have no single target
	Reason          string
	CommunityID     types.CommunityID
	ChannelID       types.ChannelID
	SourceMessageID types.MessageID
}
