package filestore

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type roleSnapshotRepository struct {
	path string
	mu   sync.RWMutex
	rows map[string]*model.RoleSnapshot
}

func newRoleSnapshotRepository(path string) (*roleSnapshotRepository, error) {
	r := &roleSnapshotRepository{path: path}
	if err := load(path, &r.rows); err != nil {
		return nil, err
	}
	return r, nil
}

func copyRoleSnapshot(s *model.RoleSnapshot) *model.RoleSnapshot {
	copied := *s
	if s.Roles != nil {
		copied.Roles = make([]string, len(s.Roles))
		copy(copied.Roles, s.Roles)
	}
	return &copied
}

func (r *roleSnapshotRepository) Put(ctx context.Context, rec *model.RoleSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[rec.Key()] = copyRoleSnapshot(rec)
	return flush(r.path, r.rows)
}

func (r *roleSnapshotRepository) Get(ctx context.Context, communityID types.CommunityID, userID types.UserID) (*model.RoleSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.rows[model.RoleSnapshotKey(communityID, userID)]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "role snapshot not found",
			goerr.V("community_id", communityID), goerr.V("user_id", userID))
	}
	return copyRoleSnapshot(s), nil
}
