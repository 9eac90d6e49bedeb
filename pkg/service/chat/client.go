package chat

import (
	"bytes"
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// client implements Service on top of the Slack Web API. Ban and mute state
// are represented as membership of two dedicated usergroups, which is how
// the upstream role checks enforce them.
type client struct {
	api           *slack.Client
	bannedGroupID string
	mutedGroupID  string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithBannedGroup sets the usergroup that carries the ban state.
func WithBannedGroup(groupID string) Option {
	return func(c *client) {
		c.bannedGroupID = groupID
	}
}

// WithMutedGroup sets the usergroup that carries the mute state.
func WithMutedGroup(groupID string) Option {
	return func(c *client) {
		c.mutedGroupID = groupID
	}
}

// New creates a new chat service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("chat bot token is required")
	}

	c := &client{
		api: slack.New(token),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *client) PostMessage(ctx context.Context, channelID types.ChannelID, blocks []slack.Block, text string) (types.CardID, error) {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}

	_, ts, err := c.api.PostMessageContext(ctx, channelID.String(), opts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to post message", goerr.V("channel_id", channelID))
	}
	return types.CardID(ts), nil
}

func (c *client) UpdateMessage(ctx context.Context, channelID types.ChannelID, cardID types.CardID, blocks []slack.Block, text string) error {
	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if len(blocks) > 0 {
		opts = append(opts, slack.MsgOptionBlocks(blocks...))
	}

	if _, _, _, err := c.api.UpdateMessageContext(ctx, channelID.String(), cardID.String(), opts...); err != nil {
		return goerr.Wrap(err, "failed to update message",
			goerr.V("channel_id", channelID), goerr.V("card_id", cardID))
	}
	return nil
}

func (c *client) SendDM(ctx context.Context, userID types.UserID, text string) error {
	ch, _, _, err := c.api.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users: []string{userID.String()},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to open DM conversation", goerr.V("user_id", userID))
	}

	if _, _, err := c.api.PostMessageContext(ctx, ch.ID, slack.MsgOptionText(text, false)); err != nil {
		return goerr.Wrap(err, "failed to send DM", goerr.V("user_id", userID))
	}
	return nil
}

func (c *client) Unban(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	if c.bannedGroupID == "" {
		return goerr.New("banned usergroup is not configured", goerr.V("community_id", communityID))
	}
	return c.removeFromGroup(ctx, c.bannedGroupID, userID)
}

func (c *client) Unmute(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	if c.mutedGroupID == "" {
		return goerr.New("muted usergroup is not configured", goerr.V("community_id", communityID))
	}
	return c.removeFromGroup(ctx, c.mutedGroupID, userID)
}

// removeFromGroup drops a user from a usergroup. The Slack API replaces the
// full member list, so the current members are fetched first. A user who is
// not a member is treated as already removed.
func (c *client) removeFromGroup(ctx context.Context, groupID string, userID types.UserID) error {
	members, err := c.api.GetUserGroupMembersContext(ctx, groupID)
	if err != nil {
		return goerr.Wrap(err, "failed to get usergroup members", goerr.V("group_id", groupID))
	}

	kept := make([]string, 0, len(members))
	for _, m := range members {
		if m != userID.String() {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return nil
	}

	if _, err := c.api.UpdateUserGroupMembersContext(ctx, groupID, strings.Join(kept, ",")); err != nil {
		return goerr.Wrap(err, "failed to update usergroup members",
			goerr.V("group_id", groupID), goerr.V("user_id", userID))
	}
	return nil
}

func (c *client) UserExists(ctx context.Context, userID types.UserID) (bool, error) {
	user, err := c.api.GetUserInfoContext(ctx, userID.String())
	if err != nil {
		if strings.Contains(err.Error(), "user_not_found") {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", userID))
	}
	return user != nil && !user.Deleted, nil
}

func (c *client) CreateRejoinInvite(ctx context.Context, channelID types.ChannelID, userID types.UserID) (string, error) {
	ch, err := c.api.InviteUsersToConversationContext(ctx, channelID.String(), userID.String())
	if err != nil {
		return "", goerr.Wrap(err, "failed to create rejoin invite",
			goerr.V("channel_id", channelID), goerr.V("user_id", userID))
	}
	return ch.ID + ":" + userID.String(), nil
}

func (c *client) RevokeInvite(ctx context.Context, channelID types.ChannelID, userID types.UserID) error {
	err := c.api.KickUserFromConversationContext(ctx, channelID.String(), userID.String())
	if err != nil {
		// An unconsumed invite means the user never joined.
		if strings.Contains(err.Error(), "not_in_channel") || strings.Contains(err.Error(), "user_not_found") {
			return nil
		}
		return goerr.Wrap(err, "failed to revoke invite",
			goerr.V("channel_id", channelID), goerr.V("user_id", userID))
	}
	return nil
}

func (c *client) ListUserRoles(ctx context.Context, userID types.UserID) ([]string, error) {
	groups, err := c.api.GetUserGroupsContext(ctx, slack.GetUserGroupsOptionIncludeUsers(true))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list usergroups")
	}

	var roles []string
	for _, g := range groups {
		for _, m := range g.Users {
			if m == userID.String() {
				roles = append(roles, g.ID)
				break
			}
		}
	}
	return roles, nil
}

func (c *client) AssignUserRoles(ctx context.Context, userID types.UserID, roles []string) error {
	for _, groupID := range roles {
		members, err := c.api.GetUserGroupMembersContext(ctx, groupID)
		if err != nil {
			return goerr.Wrap(err, "failed to get usergroup members", goerr.V("group_id", groupID))
		}

		exists := false
		for _, m := range members {
			if m == userID.String() {
				exists = true
				break
			}
		}
		if exists {
			continue
		}

		members = append(members, userID.String())
		if _, err := c.api.UpdateUserGroupMembersContext(ctx, groupID, strings.Join(members, ",")); err != nil {
			return goerr.Wrap(err, "failed to update usergroup members",
				goerr.V("group_id", groupID), goerr.V("user_id", userID))
		}
	}
	return nil
}

func (c *client) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.api.GetFileContext(ctx, url, &buf); err != nil {
		return nil, goerr.Wrap(err, "failed to download file", goerr.V("url", url))
	}
	return buf.Bytes(), nil
}

func (c *client) UploadFile(ctx context.Context, channelID types.ChannelID, name string, data []byte, comment string) error {
	_, err := c.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Filename:       name,
		FileSize:       len(data),
		Reader:         bytes.NewReader(data),
		Channel:        channelID.String(),
		InitialComment: comment,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to upload file",
			goerr.V("channel_id", channelID), goerr.V("name", name))
	}
	return nil
}
