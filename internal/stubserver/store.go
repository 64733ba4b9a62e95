// Package stubserver is a development stand-in for the external chat
// backend. It implements the REST contract the client consumes (users,
// messages, unseen, mark-read) over an in-memory store, for local work
// and integration tests. It is not a production server.
package stubserver

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"aqua_chat_client/internal/model"
	"aqua_chat_client/pkg/errorx"
)

// Store holds users and messages behind one mutex. All returned slices
// are copies.
type Store struct {
	mu        sync.Mutex
	users     []model.User
	passwords map[string]string // user id -> bcrypt hash
	messages  []model.Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		passwords: make(map[string]string),
	}
}

// AddUser registers a user with a password. The id is assigned when
// empty.
func (s *Store) AddUser(u model.User, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errorx.Wrap(err, errorx.CodeServerBusy, "hash password")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return model.User{}, errorx.Newf(errorx.CodeUserExist, "username %q taken", u.Username)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users = append(s.users, u)
	s.passwords[u.ID] = string(hash)
	return u, nil
}

// Authenticate checks a username/password pair.
func (s *Store) Authenticate(username, password string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(s.passwords[u.ID]), []byte(password)) != nil {
			return model.User{}, errorx.New(errorx.CodeInvalidPassword, "wrong password")
		}
		return u, nil
	}
	return model.User{}, errorx.Newf(errorx.CodeUserNotExist, "user %q not found", username)
}

// ListUsers returns one directory page and the total count.
func (s *Store) ListUsers(limit, offset int) ([]model.User, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.users)
	if offset < 0 || offset >= total {
		return nil, total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]model.User, end-offset)
	copy(out, s.users[offset:end])
	return out, total
}

// SearchByEmail returns users whose email contains the needle,
// case-insensitive. Role scoping is the caller's concern.
func (s *Store) SearchByEmail(email string) []model.User {
	needle := strings.ToLower(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Email), needle) {
			out = append(out, u)
		}
	}
	return out
}

// GetUser looks up a user by id.
func (s *Store) GetUser(id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, errorx.Newf(errorx.CodeNotFound, "user %q not found", id)
}

// Conversation returns up to limit messages between the two users,
// either direction, newest first.
func (s *Store) Conversation(oneID, twoID string, limit int) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.messages {
		if m.DeletedAt != nil {
			continue
		}
		if (m.SenderID == oneID && m.ReceiverID == twoID) ||
			(m.SenderID == twoID && m.ReceiverID == oneID) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CreateMessage persists a message and assigns its server id.
func (s *Store) CreateMessage(senderID, receiverID, body string) model.Message {
	now := time.Now().UTC()
	m := model.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Read:       false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()
	return m
}

// MarkRead flags the listed messages addressed to receiverID as read.
// Unknown or foreign ids are ignored; the call is idempotent.
func (s *Store) MarkRead(ids []string, receiverID string) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if _, ok := wanted[s.messages[i].ID]; !ok {
			continue
		}
		if s.messages[i].ReceiverID != receiverID || s.messages[i].Read {
			continue
		}
		s.messages[i].Read = true
		s.messages[i].UpdatedAt = now
	}
}

// Unseen returns all unread messages addressed to receiverID.
func (s *Store) Unseen(receiverID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.messages {
		if m.DeletedAt == nil && !m.Read && m.ReceiverID == receiverID {
			out = append(out, m)
		}
	}
	return out
}
