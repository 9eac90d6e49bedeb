package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// RoleSnapshot preserves the role set a user held at the moment of leaving a
// community. It is consumed on return for restoration but left in place, so
// a later departure simply overwrites it.
type RoleSnapshot struct {
	UserID      types.UserID      `json:"user_id"`
	CommunityID types.CommunityID `json:"community_id"`
	Roles       []string          `json:"roles"`
	SavedAt     time.Time         `json:"saved_at"`
}

// Key returns the stable identifier of the record within its record set.
func (r *RoleSnapshot) Key() string {
	return RoleSnapshotKey(r.CommunityID, r.UserID)
}

// RoleSnapshotKey builds the role snapshot key for a community and user.
func RoleSnapshotKey(communityID types.CommunityID, userID types.UserID) string {
	return fmt.Sprintf("%s/%s", communityID, userID)
}
