package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/warden/pkg/domain/interfaces"
)

// Filestore is the flat-file repository backend. Each record set lives in
// one JSON file mapping a stable string key to its record, loaded fully at
// start and rewritten after every mutation with write-temp-then-rename so a
// crash mid-write cannot corrupt the previous good state.
type Filestore struct {
	action       *actionRepository
	appeal       *appealRepository
	mute         *muteRepository
	strike       *strikeRepository
	roleSnapshot *roleSnapshotRepository
	invite       *inviteRepository
}

var _ interfaces.Repository = &Filestore{}

// New loads (or initializes) all record sets under dir.
func New(dir string) (*Filestore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create data directory", goerr.V("dir", dir))
	}

	action, err := newActionRepository(filepath.Join(dir, "actions.json"))
	if err != nil {
		return nil, err
	}
	appeal, err := newAppealRepository(filepath.Join(dir, "appeals.json"))
	if err != nil {
		return nil, err
	}
	mute, err := newMuteRepository(filepath.Join(dir, "mutes.json"))
	if err != nil {
		return nil, err
	}
	strike, err := newStrikeRepository(filepath.Join(dir, "strikes.json"))
	if err != nil {
		return nil, err
	}
	roleSnapshot, err := newRoleSnapshotRepository(filepath.Join(dir, "role_snapshots.json"))
	if err != nil {
		return nil, err
	}
	invite, err := newInviteRepository(filepath.Join(dir, "invites.json"))
	if err != nil {
		return nil, err
	}

	return &Filestore{
		action:       action,
		appeal:       appeal,
		mute:         mute,
		strike:       strike,
		roleSnapshot: roleSnapshot,
		invite:       invite,
	}, nil
}

func (f *Filestore) Action() interfaces.ActionRepository {
	return f.action
}

func (f *Filestore) Appeal() interfaces.AppealRepository {
	return f.appeal
}

func (f *Filestore) Mute() interfaces.MuteRepository {
	return f.mute
}

func (f *Filestore) Strike() interfaces.StrikeRepository {
	return f.strike
}

func (f *Filestore) RoleSnapshot() interfaces.RoleSnapshotRepository {
	return f.roleSnapshot
}

func (f *Filestore) Invite() interfaces.InviteRepository {
	return f.invite
}

func (f *Filestore) Close() error {
	return nil
}

// load reads a record set file into rows. A missing file is an empty set.
func load[T any](path string, rows *map[string]T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*rows = make(map[string]T)
			return nil
		}
		return goerr.Wrap(err, "failed to read record set", goerr.V("path", path))
	}

	if err := json.Unmarshal(data, rows); err != nil {
		return goerr.Wrap(err, "failed to parse record set", goerr.V("path", path))
	}
	if *rows == nil {
		*rows = make(map[string]T)
	}
	return nil
}

// flush rewrites a record set atomically: write to a temporary file in the
// same directory, then rename over the previous file.
func flush[T any](path string, rows map[string]T) error {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode record set", goerr.V("path", path))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write record set", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		return goerr.Wrap(err, "failed to replace record set", goerr.V("path", path))
	}
	return nil
}
