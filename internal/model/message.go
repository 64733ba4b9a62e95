package model

import (
	"strings"
	"time"
)

// TempIDPrefix marks client-assigned placeholder ids on optimistic
// messages. The server never produces ids with this prefix.
const TempIDPrefix = "temp-"

// Message is a direct message between two users. Exactly one of
// SenderID/ReceiverID equals the current user's id for any message
// visible in a conversation.
//
// Lifecycle: created optimistically with a temp id, replaced by the
// server-confirmed record on success, removed entirely on failure.
// Once persisted, Read only transitions false to true, except as a
// rollback of a failed mark-as-read call issued by this client.
type Message struct {
	ID         string     `json:"id"`
	SenderID   string     `json:"senderId"`
	ReceiverID string     `json:"receiverId"`
	Body       string     `json:"message"`
	Read       bool       `json:"read"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty"`
}

// Pending reports whether the message still carries a client-assigned
// placeholder id.
func (m Message) Pending() bool {
	return strings.HasPrefix(m.ID, TempIDPrefix)
}

// Equal is the structural comparison used by snapshot commits.
func (m Message) Equal(o Message) bool {
	if m.ID != o.ID || m.SenderID != o.SenderID || m.ReceiverID != o.ReceiverID ||
		m.Body != o.Body || m.Read != o.Read ||
		!m.CreatedAt.Equal(o.CreatedAt) || !m.UpdatedAt.Equal(o.UpdatedAt) {
		return false
	}
	if (m.DeletedAt == nil) != (o.DeletedAt == nil) {
		return false
	}
	if m.DeletedAt != nil && !m.DeletedAt.Equal(*o.DeletedAt) {
		return false
	}
	return true
}

// MessagesEqual reports whether two snapshots are structurally
// identical, element by element. Re-applying an unchanged snapshot must
// not trigger downstream recomputation.
func MessagesEqual(a, b []Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
