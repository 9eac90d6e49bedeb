package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// MuteRecord tracks an active mute. A nil expiry means the mute lasts until
// it is lifted manually.
type MuteRecord struct {
	TargetID    types.UserID      `json:"target_id"`
	CommunityID types.CommunityID `json:"community_id"`
	Reason      string            `json:"reason"`
	ModeratorID types.UserID      `json:"moderator_id"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
}

// Key returns the stable identifier of the record within its record set.
func (m *MuteRecord) Key() string {
	return MuteKey(m.CommunityID, m.TargetID)
}

// MuteKey builds the mute record key for a community and target.
func MuteKey(communityID types.CommunityID, targetID types.UserID) string {
	return fmt.Sprintf("%s/%s", communityID, targetID)
}

// Expired reports whether the mute has a passed expiry at the given time.
func (m *MuteRecord) Expired(now time.Time) bool {
	return m.ExpiresAt != nil && m.ExpiresAt.Before(now)
}
