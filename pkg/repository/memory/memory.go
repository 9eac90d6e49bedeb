package memory

import (
	"github.com/secmon-lab/warden/pkg/domain/interfaces"
)

// Memory is the in-memory repository backend, used by tests and by
// `--repository-backend memory`.
type Memory struct {
	action       *actionRepository
	appeal       *appealRepository
	mute         *muteRepository
	strike       *strikeRepository
	roleSnapshot *roleSnapshotRepository
	invite       *inviteRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		action:       newActionRepository(),
		appeal:       newAppealRepository(),
		mute:         newMuteRepository(),
		strike:       newStrikeRepository(),
		roleSnapshot: newRoleSnapshotRepository(),
		invite:       newInviteRepository(),
	}
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}

func (m *Memory) Appeal() interfaces.AppealRepository {
	return m.appeal
}

func (m *Memory) Mute() interfaces.MuteRepository {
	return m.mute
}

func (m *Memory) Strike() interfaces.StrikeRepository {
	return m.strike
}

func (m *Memory) RoleSnapshot() interfaces.RoleSnapshotRepository {
	return m.roleSnapshot
}

func (m *Memory) Invite() interfaces.InviteRepository {
	return m.invite
}

func (m *Memory) Close() error {
	return nil
}
