package filestore

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type appealRepository struct {
	path string
	mu   sync.RWMutex
	rows map[string]*model.Appeal
}

func newAppealRepository(path string) (*appealRepository, error) {
	r := &appealRepository{path: path}
	if err := load(path, &r.rows); err != nil {
		return nil, err
	}
	return r, nil
}

func copyAppeal(a *model.Appeal) *model.Appeal {
	copied := *a
	return &copied
}

func (r *appealRepository) Put(ctx context.Context, appeal *model.Appeal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[appeal.ID.String()] = copyAppeal(appeal)
	return flush(r.path, r.rows)
}

func (r *appealRepository) Get(ctx context.Context, id types.AppealID) (*model.Appeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.rows[id.String()]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "appeal not found", goerr.V("id", id))
	}
	return copyAppeal(a), nil
}

func (r *appealRepository) List(ctx context.Context) ([]*model.Appeal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appeals := make([]*model.Appeal, 0, len(r.rows))
	for _, a := range r.rows {
		appeals = append(appeals, copyAppeal(a))
	}
	return appeals, nil
}

func (r *appealRepository) Delete(ctx context.Context, id types.AppealID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rows[id.String()]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "appeal not found", goerr.V("id", id))
	}
	delete(r.rows, id.String())
	return flush(r.path, r.rows)
}
