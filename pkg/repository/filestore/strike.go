package filestore

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
)

type strikeRepository struct {
	path string
	mu   sync.RWMutex
	rows map[string]*model.StrikeRecord
}

func newStrikeRepository(path string) (*strikeRepository, error) {
	r := &strikeRepository{path: path}
	if err := load(path, &r.rows); err != nil {
		return nil, err
	}
	return r, nil
}

func copyStrikeRecord(s *model.StrikeRecord) *model.StrikeRecord {
	copied := *s
	if s.Strikes != nil {
		copied.Strikes = make([]model.Strike, len(s.Strikes))
		copy(copied.Strikes, s.Strikes)
	}
	return &copied
}

func (r *strikeRepository) Put(ctx context.Context, rec *model.StrikeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[rec.Key()] = copyStrikeRecord(rec)
	return flush(r.path, r.rows)
}

func (r *strikeRepository) Get(ctx context.Context, communityID types.CommunityID, userID types.UserID) (*model.StrikeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.rows[model.StrikeKey(communityID, userID)]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "strike record not found",
			goerr.V("community_id", communityID), goerr.V("user_id", userID))
	}
	return copyStrikeRecord(s), nil
}

func (r *strikeRepository) List(ctx context.Context) ([]*model.StrikeRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strikes := make([]*model.StrikeRecord, 0, len(r.rows))
	for _, s := range r.rows {
		strikes = append(strikes, copyStrikeRecord(s))
	}
	return strikes, nil
}

func (r *strikeRepository) Delete(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := model.StrikeKey(communityID, userID)
	if _, exists := r.rows[key]; !exists {
		return goerr.Wrap(interfaces.ErrNotFound, "strike record not found",
			goerr.V("community_id", communityID), goerr.V("user_id", userID))
	}
	delete(r.rows, key)
	return flush(r.path, r.rows)
}
