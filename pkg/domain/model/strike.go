package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// Strike is one recorded policy violation.
type Strike struct {
	At     time.Time `json:"at"`
	Reason string    `json:"reason"`
}

// StrikeRecord accumulates strikes for a user within a community. Strikes
// never expire on their own; the whole record is cleared only by explicit
// administrative action.
type StrikeRecord struct {
	UserID      types.UserID      `json:"user_id"`
	CommunityID types.CommunityID `json:"community_id"`
	Strikes     []Strike          `json:"strikes"`
}

// Key returns the stable identifier of the record within its record set.
func (s *StrikeRecord) Key() string {
	return StrikeKey(s.CommunityID, s.UserID)
}

// StrikeKey builds the strike record key for a community and user.
func StrikeKey(communityID types.CommunityID, userID types.UserID) string {
	return fmt.Sprintf("%s/%s", communityID, userID)
}
