package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type actionRepository struct {
	mu      sync.RWMutex
	actions map[types.ActionID]*model.ModerationAction
}

func newActionRepository() *actionRepository {
	return &actionRepository{
		actions: make(map[types.ActionID]*model.ModerationAction),
	}
}

// copyAction creates a deep copy of an action
func copyAction(a *model.ModerationAction) *model.ModerationAction {
	copied := *a

	if a.Context != nil {
		copied.Context = make([]model.ContextMessage, len(a.Context))
		copy(copied.Context, a.Context)
	}
	if a.Flags != nil {
		copied.Flags = make([]types.TamperFlag, len(a.Flags))
		copy(copied.Flags, a.Flags)
	}

	return &copied
}

func (r *actionRepository) Put(ctx context.Context, action *model.ModerationAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions[action.ID] = copyAction(action)
	return nil
}

func (r *actionRepository) Get(ctx context.Context, id types.ActionID) (*model.ModerationAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.actions[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", id))
	}
	return copyAction(a), nil
}

func (r *actionRepository) List(ctx context.Context) ([]*model.ModerationAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]*model.ModerationAction, 0, len(r.actions))
	for _, a := range r.actions {
		actions = append(actions, copyAction(a))
	}
	return actions, nil
}

func (r *actionRepository) Delete(ctx context.Context, id types.ActionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.actions[id]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "action not found", goerr.V("id", id))
	}
	delete(r.actions, id)
	return nil
}

func (r *actionRepository) FindByCardID(ctx context.Context, cardID types.CardID) (*model.ModerationAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.actions {
		if _, ok := a.CardLocation(cardID); ok {
			return copyAction(a), nil
		}
	}
	return nil, nil
}

func (r *actionRepository) FindByTarget(ctx context.Context, communityID types.CommunityID, targetID types.UserID, kind types.ActionKind) ([]*model.ModerationAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*model.ModerationAction
	for _, a := range r.actions {
		if a.CommunityID == communityID && a.TargetID == targetID && a.Kind == kind {
			found = append(found, copyAction(a))
		}
	}
	return found, nil
}
