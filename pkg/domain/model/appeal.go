package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// Appeal is one submitted ban appeal. It exists only while pending: an
// owner decision removes the record after its side effects complete.
type Appeal struct {
	ID          types.AppealID     `json:"id"`
	UserID      types.UserID       `json:"user_id"`
	CommunityID types.CommunityID  `json:"community_id"`
	Text        string             `json:"text"`
	CreatedAt   time.Time          `json:"created_at"`
	Status      types.AppealStatus `json:"status"`
}

// NewAppeal builds a pending appeal. The identifier is derived from
// community, user and submission time.
func NewAppeal(userID types.UserID, communityID types.CommunityID, text string, now time.Time) *Appeal {
	return &Appeal{
		ID:          types.AppealID(fmt.Sprintf("%s/%s/%d", communityID, userID, now.UnixNano())),
		UserID:      userID,
		CommunityID: communityID,
		Text:        text,
		CreatedAt:   now,
		Status:      types.AppealStatusPending,
	}
}
