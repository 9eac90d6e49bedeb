package types

// UserID is a chat platform user identifier.
type UserID string

func (id UserID) String() string { return string(id) }

// CommunityID identifies a community (a Slack workspace/team).
type CommunityID string

func (id CommunityID) String() string { return string(id) }

// ChannelID identifies a conversation within a community.
type ChannelID string

func (id ChannelID) String() string { return string(id) }

// MessageID identifies a message within a conversation. For Slack this is
// the message timestamp, unique per channel.
type MessageID string

func (id MessageID) String() string { return string(id) }

// CardID identifies a rendered review card (the posted message timestamp).
type CardID string

func (id CardID) String() string { return string(id) }

// ActionID identifies a recorded moderation action.
type ActionID string

func (id ActionID) String() string { return string(id) }

// AppealID identifies a submitted ban appeal.
type AppealID string

func (id AppealID) String() string { return string(id) }

// InviteID identifies a rejoin invitation in the local invite ledger.
type InviteID string

func (id InviteID) String() string { return string(id) }
