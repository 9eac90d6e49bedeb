package filestore

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type muteRepository struct {
	path string
	mu   sync.RWMutex
	rows map[string]*model.MuteRecord
}

func newMuteRepository(path string) (*muteRepository, error) {
	r := &muteRepository{path: path}
	if err := load(path, &r.rows); err != nil {
		return nil, err
	}
	return r, nil
}

func copyMute(m *model.MuteRecord) *model.MuteRecord {
	copied := *m
	if m.ExpiresAt != nil {
		expiry := *m.ExpiresAt
		copied.ExpiresAt = &expiry
	}
	return &copied
}

func (r *muteRepository) Put(ctx context.Context, rec *model.MuteRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[rec.Key()] = copyMute(rec)
	return flush(r.path, r.rows)
}

func (r *muteRepository) Get(ctx context.Context, communityID types.CommunityID, targetID types.UserID) (*model.MuteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, exists := r.rows[model.MuteKey(communityID, targetID)]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "mute record not found",
			goerr.V("community_id", communityID), goerr.V("target_id", targetID))
	}
	return copyMute(m), nil
}

func (r *muteRepository) List(ctx context.Context) ([]*model.MuteRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mutes := make([]*model.MuteRecord, 0, len(r.rows))
	for _, m := range r.rows {
		mutes = append(mutes, copyMute(m))
	}
	return mutes, nil
}

func (r *muteRepository) Delete(ctx context.Context, communityID types.CommunityID, targetID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := model.MuteKey(communityID, targetID)
	if _, exists := r.rows[key]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "mute record not found",
			goerr.V("community_id", communityID), goerr.V("target_id", targetID))
	}
	delete(r.rows, key)
	return flush(r.path, r.rows)
}
