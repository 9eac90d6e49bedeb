package chat

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// Service is the chat-transport collaborator: everything the oversight core
// needs from the platform. All network I/O of the core goes through here, so
// tests can swap in a recording mock.
type Service interface {
	// PostMessage posts a Block Kit message to a channel and returns its
	// message timestamp, which doubles as the review card identifier.
	// The text parameter is the notification fallback.
	PostMessage(ctx context.Context, channelID types.ChannelID, blocks []slack.Block, text string) (types.CardID, error)

	// UpdateMessage rewrites an existing Block Kit message in place.
	UpdateMessage(ctx context.Context, channelID types.ChannelID, cardID types.CardID, blocks []slack.Block, text string) error

	// SendDM delivers a direct message to a user.
	SendDM(ctx context.Context, userID types.UserID, text string) error

	// Unban lifts the community-level ban state for a user.
	Unban(ctx context.Context, communityID types.CommunityID, userID types.UserID) error

	// Unmute lifts the community-level mute state for a user.
	Unmute(ctx context.Context, communityID types.CommunityID, userID types.UserID) error

	// UserExists reports whether the platform still knows the user.
	UserExists(ctx context.Context, userID types.UserID) (bool, error)

	// CreateRejoinInvite issues a single-use, non-expiring invitation back
	// into the community's home channel and returns a platform handle.
	CreateRejoinInvite(ctx context.Context, channelID types.ChannelID, userID types.UserID) (string, error)

	// RevokeInvite withdraws an unconsumed rejoin invitation.
	RevokeInvite(ctx context.Context, channelID types.ChannelID, userID types.UserID) error

	// ListUserRoles returns the role (usergroup) IDs a user currently holds.
	ListUserRoles(ctx context.Context, userID types.UserID) ([]string, error)

	// AssignUserRoles re-adds a user to the given roles.
	AssignUserRoles(ctx context.Context, userID types.UserID, roles []string) error

	// DownloadFile fetches attachment bytes from an authenticated URL.
	DownloadFile(ctx context.Context, url string) ([]byte, error)

	// UploadFile re-hosts a file into a channel with a comment.
	UploadFile(ctx context.Context, channelID types.ChannelID, name string, data []byte, comment string) error
}
