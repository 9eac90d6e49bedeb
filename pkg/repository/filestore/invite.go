package filestore

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type inviteRepository struct {
	path string
	mu   sync.RWMutex
	rows map[string]*model.InviteRecord
}

func newInviteRepository(path string) (*inviteRepository, error) {
	r := &inviteRepository{path: path}
	if err := load(path, &r.rows); err != nil {
		return nil, err
	}
	return r, nil
}

func copyInvite(i *model.InviteRecord) *model.InviteRecord {
	copied := *i
	return &copied
}

func (r *inviteRepository) Put(ctx context.Context, rec *model.InviteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[rec.ID.String()] = copyInvite(rec)
	return flush(r.path, r.rows)
}

func (r *inviteRepository) Get(ctx context.Context, id types.InviteID) (*model.InviteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.rows[id.String()]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "invite record not found", goerr.V("id", id))
	}
	return copyInvite(i), nil
}

func (r *inviteRepository) List(ctx context.Context) ([]*model.InviteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invites := make([]*model.InviteRecord, 0, len(r.rows))
	for _, i := range r.rows {
		invites = append(invites, copyInvite(i))
	}
	return invites, nil
}

func (r *inviteRepository) Delete(ctx context.Context, id types.InviteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[id.String()]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "invite record not found", goerr.V("id", id))
	}
	delete(r.rows, id.String())
	return flush(r.path, r.rows)
}
