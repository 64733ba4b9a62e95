// Package chat implements the client-side chat layer: the unseen-message
// poller, the contact-list reconciler, the per-conversation poller/sync
// and the optimistic message composer. It operates over a plain
// request/response API with no server push; all freshness comes from
// fixed-interval polling of idempotent snapshots.
package chat

import (
	"context"

	"aqua_chat_client/internal/model"
)

// Session supplies the current identity and bearer token. It is owned
// by the external identity provider; absence of a token puts every
// poller into its idle state.
type Session interface {
	// CurrentUser returns the logged-in user, or false when logged out.
	CurrentUser() (model.User, bool)
	// Token returns the current bearer token, or false when logged out.
	Token() (string, bool)
}

// UserDirectory fetches and searches the user roster.
// rest.Client satisfies this.
type UserDirectory interface {
	ListUsers(ctx context.Context, limit, offset int) ([]model.User, error)
	SearchUsersByEmail(ctx context.Context, email string) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// MessageAPI exposes the message endpoints. rest.Client satisfies this.
type MessageAPI interface {
	// ListMessages returns up to limit of the most recent messages
	// between the two users, newest first.
	ListMessages(ctx context.Context, currentUserID, peerID string, limit int) ([]model.Message, error)
	// SendMessage creates a message and returns the server record.
	SendMessage(ctx context.Context, receiverID, body string) (*model.Message, error)
	// MarkMessagesRead flags the given ids as read.
	MarkMessagesRead(ctx context.Context, ids []string) error
	// ListUnseen returns the full snapshot of unread messages addressed
	// to the current user.
	ListUnseen(ctx context.Context) ([]model.Message, error)
}
