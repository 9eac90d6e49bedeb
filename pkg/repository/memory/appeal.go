package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type appealRepository struct {
	mu      sync.RWMutex
	appeals map[types.AppealID]*model.Appeal
}

func newAppealRepository() *appealRepository {
	return &appealRepository{
		appeals: make(map[types.AppealID]*model.Appeal),
	}
}

func copyAppeal(a *model.Appeal) *model.Appeal {
	copied := *a
	return &copied
}

func (r *appealRepository) Put(ctx context.Context, appeal *model.Appeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appeals[appeal.ID] = copyAppeal(appeal)
	return nil
}

func (r *appealRepository) Get(ctx context.Context, id types.AppealID) (*model.Appeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.appeals[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "appeal not found", goerr.V("id", id))
	}
	return copyAppeal(a), nil
}

func (r *appealRepository) List(ctx context.Context) ([]*model.Appeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appeals := make([]*model.Appeal, 0, len(r.appeals))
	for _, a := range r.appeals {
		appeals = append(appeals, copyAppeal(a))
	}
	return appeals, nil
}

func (r *appealRepository) Delete(ctx context.Context, id types.AppealID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.appeals[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "appeal not found", goerr.V("id", id))
	}
	delete(r.appeals, id)
	return nil
}
