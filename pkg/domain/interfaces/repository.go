package interfaces

import (
	"context"

	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

// Repository aggregates the five spec record sets plus the invite ledger.
// Each record set is owned exclusively by one component; the backend loads
// everything into memory at start and makes every mutation durable before
// returning.
type Repository interface {
	Action() ActionRepository
	Appeal() AppealRepository
	Mute() MuteRepository
	Strike() StrikeRepository
	RoleSnapshot() RoleSnapshotRepository
	Invite() InviteRepository

	Close() error
}

// ActionRepository stores pending moderation actions.
type ActionRepository interface {
	// Put creates or replaces an action.
	Put(ctx context.Context, action *model.ModerationAction) error

	// Get retrieves an action by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id types.ActionID) (*model.ModerationAction, error)

	// List returns all pending actions.
	List(ctx context.Context) ([]*model.ModerationAction, error)

	// Delete removes an action by ID. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id types.ActionID) error

	// FindByCardID returns the action owning the given review card.
	// Returns nil, nil if no action tracks the card.
	FindByCardID(ctx context.Context, cardID types.CardID) (*model.ModerationAction, error)

	// FindByTarget returns all pending actions of a kind against a target.
	FindByTarget(ctx context.Context, communityID types.CommunityID, targetID types.UserID, kind types.ActionKind) ([]*model.ModerationAction, error)
}

// AppealRepository stores pending ban appeals.
type AppealRepository interface {
	Put(ctx context.Context, appeal *model.Appeal) error
	Get(ctx context.Context, id types.AppealID) (*model.Appeal, error)
	List(ctx context.Context) ([]*model.Appeal, error)
	Delete(ctx context.Context, id types.AppealID) error
}

// MuteRepository stores active mutes keyed by community and target.
type MuteRepository interface {
	Put(ctx context.Context, rec *model.MuteRecord) error
	Get(ctx context.Context, communityID types.CommunityID, targetID types.UserID) (*model.MuteRecord, error)
	List(ctx context.Context) ([]*model.MuteRecord, error)
	Delete(ctx context.Context, communityID types.CommunityID, targetID types.UserID) error
}

// StrikeRepository stores accumulated strikes keyed by community and user.
type StrikeRepository interface {
	Put(ctx context.Context, rec *model.StrikeRecord) error
	Get(ctx context.Context, communityID types.CommunityID, userID types.UserID) (*model.StrikeRecord, error)
	List(ctx context.Context) ([]*model.StrikeRecord, error)
	Delete(ctx context.Context, communityID types.CommunityID, userID types.UserID) error
}

// RoleSnapshotRepository stores departure role snapshots keyed by community
// and user. Snapshots are overwritten on each departure and never deleted on
// restore.
type RoleSnapshotRepository interface {
	Put(ctx context.Context, rec *model.RoleSnapshot) error
	Get(ctx context.Context, communityID types.CommunityID, userID types.UserID) (*model.RoleSnapshot, error)
}

// InviteRepository stores rejoin invitation bookkeeping.
type InviteRepository interface {
	Put(ctx context.Context, rec *model.InviteRecord) error
	Get(ctx context.Context, id types.InviteID) (*model.InviteRecord, error)
	List(ctx context.Context) ([]*model.InviteRecord, error)
	Delete(ctx context.Context, id types.InviteID) error
}
