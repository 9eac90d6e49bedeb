package filestore_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
	"github.com/secmon-lab/warden/pkg/domain/model"
	"github.com/secmon-lab/warden/pkg/domain/types"
	"github.com/secmon-lab/warden/pkg/repository/filestore"
)

func sampleAction(t *testing.T) *model.ModerationAction {
	t.Helper()
	action := model.NewModerationAction(&model.ActionRequest{
		Kind:        types.ActionKindBan,
		ActorID:     "U-MOD",
		TargetID:    "U-TARGET",
		Reason:      "spam",
		CommunityID: "T1",
		ChannelID:   "C1",
	}, []model.ContextMessage{
		{MessageID: "100.001", AuthorID: "U-X", Text: "hi"},
	}, time.Now().UTC())
	action.RegisterCard(types.CardLocationInPlace, "100.100")
	action.RegisterCard(types.CardLocationAudit, "100.200")
	return action
}

func TestFilestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := filestore.New(dir)
	gt.NoError(t, err).Required()

	action := sampleAction(t)
	gt.NoError(t, repo.Action().Put(ctx, action))

	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	gt.NoError(t, repo.Mute().Put(ctx, &model.MuteRecord{
		TargetID:    "U-LOUD",
		CommunityID: "T1",
		Reason:      "flooding",
		ModeratorID: "U-MOD",
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		ExpiresAt:   &expiry,
	}))
	gt.NoError(t, repo.Strike().Put(ctx, &model.StrikeRecord{
		UserID:      "U-TROUBLE",
		CommunityID: "T1",
		Strikes:     []model.Strike{{At: time.Now().UTC().Truncate(time.Second), Reason: "spam"}},
	}))
	gt.NoError(t, repo.Close())

	t.Run("records survive a reopen", func(t *testing.T) {
		reopened, err := filestore.New(dir)
		gt.NoError(t, err).Required()

		loaded, err := reopened.Action().Get(ctx, action.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, loaded.Kind).Equal(types.ActionKindBan)
		gt.Value(t, loaded.InPlaceCardID).Equal("100.100")
		gt.Array(t, loaded.Context).Length(1)

		mute, err := reopened.Mute().Get(ctx, "T1", "U-LOUD")
		gt.NoError(t, err).Required()
		gt.Value(t, mute.ExpiresAt.Equal(expiry)).Equal(true)

		strike, err := reopened.Strike().Get(ctx, "T1", "U-TROUBLE")
		gt.NoError(t, err).Required()
		gt.Array(t, strike.Strikes).Length(1)
	})

	t.Run("record set files exist on disk", func(t *testing.T) {
		for _, name := range []string{"actions.json", "mutes.json", "strikes.json"} {
			_, err := os.Stat(filepath.Join(dir, name))
			gt.NoError(t, err)
		}
	})
}

func TestFilestoreNotFound(t *testing.T) {
	ctx := context.Background()
	repo, err := filestore.New(t.TempDir())
	gt.NoError(t, err).Required()

	_, err = repo.Action().Get(ctx, "T1/ban/42")
	gt.Error(t, err)
	gt.Value(t, errors.Is(err, interfaces.ErrNotFound)).Equal(true)

	gt.Error(t, repo.Appeal().Delete(ctx, "nope"))

	found, err := repo.Action().FindByCardID(ctx, "100.100")
	gt.NoError(t, err)
	gt.Value(t, found == nil).Equal(true)
}

func TestFilestoreDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := filestore.New(dir)
	gt.NoError(t, err).Required()

	action := sampleAction(t)
	gt.NoError(t, repo.Action().Put(ctx, action))
	gt.NoError(t, repo.Action().Delete(ctx, action.ID))

	// Deletion is durable across a reopen.
	reopened, err := filestore.New(dir)
	gt.NoError(t, err).Required()
	_, err = reopened.Action().Get(ctx, action.ID)
	gt.Value(t, errors.Is(err, interfaces.ErrNotFound)).Equal(true)
}

func TestFilestoreFindByCardID(t *testing.T) {
	ctx := context.Background()
	repo, err := filestore.New(t.TempDir())
	gt.NoError(t, err).Required()

	action := sampleAction(t)
	gt.NoError(t, repo.Action().Put(ctx, action))

	found, err := repo.Action().FindByCardID(ctx, "100.200")
	gt.NoError(t, err).Required()
	gt.Value(t, found.ID).Equal(action.ID)
}
