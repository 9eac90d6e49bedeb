package model

import (
	"time"

	"github.com/secmon-lab/warden/pkg/domain/types"
)

// Message is a normalized chat message as observed from the event stream.
// It is the runtime shape fed into the context recorder and the media cache;
// only its ContextMessage projection is ever persisted.
type Message struct {
	ID          types.MessageID
	ChannelID   types.ChannelID
	CommunityID types.CommunityID
	AuthorID    types.UserID
	AuthorName  string
	Text        string
	Timestamp   time.Time
	Attachments []Attachment
	CardCount   int // rich cards (blocks/attachments) carried by the message
}

// Attachment is one file carried by a message. URL is the platform's
// authenticated download location; bytes are fetched through the chat
// service, never stored here.
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Mimetype string `json:"mimetype"`
	URL      string `json:"-"`
	Size     int    `json:"size"`
}

// ContextMessage is the persisted projection of a Message used in action
// context snapshots.
type ContextMessage struct {
	MessageID   types.MessageID `json:"message_id"`
	AuthorID    types.UserID    `json:"author_id"`
	AuthorName  string          `json:"author_name"`
	Text        string          `json:"text"`
	Timestamp   time.Time       `json:"timestamp"`
	Attachments []string        `json:"attachments,omitempty"` // file names only
	CardCount   int             `json:"card_count,omitempty"`
}

// ToContext converts the message into its persisted snapshot form.
func (m *Message) ToContext() ContextMessage {
	names := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		names = append(names, a.Name)
	}
	return ContextMessage{
		MessageID:   m.ID,
		AuthorID:    m.AuthorID,
		AuthorName:  m.AuthorName,
		Text:        m.Text,
		Timestamp:   m.Timestamp,
		Attachments: names,
		CardCount:   m.CardCount,
	}
}
