package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"aqua_chat_client/internal/model"
)

// Composer manages the outbound message lifecycle: optimistic insert,
// server confirmation, rollback on failure. One composer belongs to one
// conversation view.
type Composer struct {
	api      MessageAPI
	session  Session
	conv     *Conversation
	clock    clockwork.Clock
	listener ComposerListener

	mu       sync.Mutex
	draft    string
	inFlight bool
}

// NewComposer builds a composer bound to conv.
func NewComposer(api MessageAPI, session Session, conv *Conversation, clock clockwork.Clock, listener ComposerListener) *Composer {
	if listener == nil {
		listener = NopComposerListener{}
	}
	return &Composer{
		api:      api,
		session:  session,
		conv:     conv,
		clock:    clock,
		listener: listener,
	}
}

// SetDraft replaces the composed input text.
func (cp *Composer) SetDraft(text string) {
	cp.mu.Lock()
	cp.draft = text
	cp.mu.Unlock()
}

// Draft returns the current input text.
func (cp *Composer) Draft() string {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.draft
}

// Send submits the current draft. It returns false without side
// effects for no-op sends: blank draft, no selected contact, no auth
// token, or a send already in flight.
//
// The optimistic bubble appears and the input clears before the server
// answers. On success the temporary record is replaced in place by the
// confirmed one; on failure it is removed, the draft is restored and
// the listener is notified. Callers wanting fire-and-forget run Send in
// a goroutine; the in-flight flag rejects concurrent sends but never
// blocks switching contacts.
func (cp *Composer) Send(ctx context.Context) bool {
	me, ok := cp.session.CurrentUser()
	if !ok {
		return false
	}
	if _, ok := cp.session.Token(); !ok {
		return false
	}
	peer := cp.conv.Peer()
	if peer == nil {
		return false
	}

	cp.mu.Lock()
	text := cp.draft
	if strings.TrimSpace(text) == "" || cp.inFlight {
		cp.mu.Unlock()
		return false
	}
	cp.inFlight = true
	cp.draft = "" // input clears immediately, not after confirmation
	cp.mu.Unlock()

	now := cp.clock.Now()
	temp := model.Message{
		ID:         model.TempIDPrefix + uuid.NewString(),
		SenderID:   me.ID,
		ReceiverID: peer.ID,
		Body:       text,
		Read:       false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	cp.conv.AppendLocal(temp)

	confirmed, err := cp.api.SendMessage(ctx, peer.ID, text)

	cp.mu.Lock()
	cp.inFlight = false
	cp.mu.Unlock()

	if err != nil {
		zap.L().Warn("send message failed",
			zap.String("peerId", peer.ID), zap.Error(err))
		cp.conv.RemoveLocal(temp.ID)
		cp.mu.Lock()
		cp.draft = text
		cp.mu.Unlock()
		cp.listener.RestoreDraft(text)
		cp.listener.Notify("message could not be sent")
		return true
	}

	cp.conv.ReplaceLocal(temp.ID, *confirmed)
	return true
}

// InFlight reports whether a send is outstanding.
func (cp *Composer) InFlight() bool {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	return cp.inFlight
}
