package usecase_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/slack-go/slack"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// mockChatService is a recording implementation of chat.Service for testing.
// Each method records its call and can be overridden with a fn field.
type mockChatService struct {
	mu sync.Mutex

	postMessageFn func(ctx context.Context, channelID types.ChannelID, blocks []slack.Block, text string) (types.CardID, error)
	unbanFn       func(ctx context.Context, communityID types.CommunityID, userID types.UserID) error
	unmuteFn      func(ctx context.Context, communityID types.CommunityID, userID types.UserID) error
	userExistsFn  func(ctx context.Context, userID types.UserID) (bool, error)
	uploadFileFn  func(ctx context.Context, channelID types.ChannelID, name string, data []byte, comment string) error

	posted         []postedMessage
	updated        []postedMessage
	dms            []sentDM
	unbanned       []types.UserID
	unmuted        []types.UserID
	invitesCreated []types.UserID
	invitesRevoked []types.UserID
	assignedRoles  map[types.UserID][]string
	uploads        []uploadedFile

	nextCardID int
}

type postedMessage struct {
	ChannelID types.ChannelID
	CardID    types.CardID
	Text      string
	Blocks    []slack.Block
}

type sentDM struct {
	UserID types.UserID
	Text   string
}

type uploadedFile struct {
	ChannelID types.ChannelID
	Name      string
	Data      []byte
	Comment   string
}

func newMockChatService() *mockChatService {
	return &mockChatService{
		assignedRoles: make(map[types.UserID][]string),
	}
}

func (m *mockChatService) PostMessage(ctx context.Context, channelID types.ChannelID, blocks []slack.Block, text string) (types.CardID, error) {
	if m.postMessageFn != nil {
		return m.postMessageFn(ctx, channelID, blocks, text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCardID++
	cardID := types.CardID(fmt.Sprintf("1700000000.%06d", m.nextCardID))
	m.posted = append(m.posted, postedMessage{
		ChannelID: channelID,
		CardID:    cardID,
		Text:      text,
		Blocks:    blocks,
	})
	return cardID, nil
}

func (m *mockChatService) UpdateMessage(ctx context.Context, channelID types.ChannelID, cardID types.CardID, blocks []slack.Block, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, postedMessage{
		ChannelID: channelID,
		CardID:    cardID,
		Text:      text,
		Blocks:    blocks,
	})
	return nil
}

func (m *mockChatService) SendDM(ctx context.Context, userID types.UserID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dms = append(m.dms, sentDM{UserID: userID, Text: text})
	return nil
}

func (m *mockChatService) Unban(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	if m.unbanFn != nil {
		return m.unbanFn(ctx, communityID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbanned = append(m.unbanned, userID)
	return nil
}

func (m *mockChatService) Unmute(ctx context.Context, communityID types.CommunityID, userID types.UserID) error {
	if m.unmuteFn != nil {
		return m.unmuteFn(ctx, communityID, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unmuted = append(m.unmuted, userID)
	return nil
}

func (m *mockChatService) UserExists(ctx context.Context, userID types.UserID) (bool, error) {
	if m.userExistsFn != nil {
		return m.userExistsFn(ctx, userID)
	}
	return true, nil
}

func (m *mockChatService) CreateRejoinInvite(ctx context.Context, channelID types.ChannelID, userID types.UserID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitesCreated = append(m.invitesCreated, userID)
	return "invite-" + string(userID), nil
}

func (m *mockChatService) RevokeInvite(ctx context.Context, channelID types.ChannelID, userID types.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invitesRevoked = append(m.invitesRevoked, userID)
	return nil
}

func (m *mockChatService) ListUserRoles(ctx context.Context, userID types.UserID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignedRoles[userID], nil
}

func (m *mockChatService) AssignUserRoles(ctx context.Context, userID types.UserID, roles []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignedRoles[userID] = roles
	return nil
}

func (m *mockChatService) DownloadFile(ctx context.Context, url string) ([]byte, error) {
	return []byte("file content from " + url), nil
}

func (m *mockChatService) UploadFile(ctx context.Context, channelID types.ChannelID, name string, data []byte, comment string) error {
	if m.uploadFileFn != nil {
		return m.uploadFileFn(ctx, channelID, name, data, comment)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, uploadedFile{
		ChannelID: channelID,
		Name:      name,
		Data:      data,
		Comment:   comment,
	})
	return nil
}

// postedTo returns the messages posted to the given channel.
func (m *mockChatService) postedTo(channelID types.ChannelID) []postedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []postedMessage
	for _, p := range m.posted {
		if p.ChannelID == channelID {
			out = append(out, p)
		}
	}
	return out
}
