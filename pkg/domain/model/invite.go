package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

// InviteRecord is local bookkeeping for a single-use rejoin invitation
// issued on unban or appeal approval. The 24h cleanup sweep revokes and
// drops unconsumed invitations past the retention period.
type InviteRecord struct {
	ID          types.InviteID    `json:"id"`
	UserID      types.UserID      `json:"user_id"`
	CommunityID types.CommunityID `json:"community_id"`
	ChannelID   types.ChannelID   `json:"channel_id"`
	CreatedAt   time.Time         `json:"created_at"`
	Consumed    bool              `json:"consumed"`
}

// NewInviteRecord builds an invite record with a fresh identifier.
func NewInviteRecord(userID types.UserID, communityID types.CommunityID, channelID types.ChannelID, now time.Time) *InviteRecord {
	return &InviteRecord{
		ID:          types.InviteID(uuid.NewString()),
		UserID:      userID,
		CommunityID: communityID,
		ChannelID:   channelID,
		CreatedAt:   now,
	}
}
