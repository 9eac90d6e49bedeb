package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type inviteRepository struct {
	mu      sync.RWMutex
	invites map[types.InviteID]*model.InviteRecord
}

func newInviteRepository() *inviteRepository {
	return &inviteRepository{
		invites: make(map[types.InviteID]*model.InviteRecord),
	}
}

func copyInvite(i *model.InviteRecord) *model.InviteRecord {
	copied := *i
	return &copied
}

func (r *inviteRepository) Put(ctx context.Context, rec *model.InviteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.invites[rec.ID] = copyInvite(rec)
	return nil
}

func (r *inviteRepository) Get(ctx context.Context, id types.InviteID) (*model.InviteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.invites[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "invite record not found", goerr.V("id", id))
	}
	return copyInvite(i), nil
}

func (r *inviteRepository) List(ctx context.Context) ([]*model.InviteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invites := make([]*model.InviteRecord, 0, len(r.invites))
	for _, i := range r.invites {
		invites = append(invites, copyInvite(i))
	}
	return invites, nil
}

func (r *inviteRepository) Delete(ctx context.Context, id types.InviteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invites[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "invite record not found", goerr.V("id", id))
	}
	delete(r.invites, id)
	return nil
}
