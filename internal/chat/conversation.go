package chat

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"aqua_chat_client/internal/model"
)

// Conversation owns the message list of the currently selected contact.
// Per contact it moves Loading -> Synced: a blocking initial fetch,
// then background polling on a fixed interval until another contact is
// selected.
//
// Clearing the poll timer does not cancel an already-issued request, so
// every fetch carries the generation it was scheduled under and commits
// nothing once the generation has moved on.
type Conversation struct {
	api      MessageAPI
	session  Session
	clock    clockwork.Clock
	interval time.Duration
	pageSize int
	listener ConversationListener

	mu      sync.Mutex
	peer    *model.User
	gen     uint64
	msgs    []model.Message
	loaded  bool
	lastErr error
	source  *PollingSource
}

// NewConversation builds an idle conversation controller.
func NewConversation(api MessageAPI, session Session, clock clockwork.Clock, interval time.Duration, pageSize int, listener ConversationListener) *Conversation {
	if listener == nil {
		listener = NopConversationListener{}
	}
	return &Conversation{
		api:      api,
		session:  session,
		clock:    clock,
		interval: interval,
		pageSize: pageSize,
		listener: listener,
	}
}

// Select switches the active contact. Local message state and any
// error are cleared immediately so no stale conversation is displayed,
// the old timer is torn down, and a new poll loop starts with an
// immediate fetch. Passing nil deselects and stops polling entirely.
func (c *Conversation) Select(peer *model.User) {
	c.mu.Lock()
	old := c.source
	c.source = nil
	c.gen++
	gen := c.gen
	c.msgs = nil
	c.loaded = false
	c.lastErr = nil
	if peer != nil {
		p := *peer
		c.peer = &p
	} else {
		c.peer = nil
	}
	c.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	if peer == nil {
		return
	}

	p := *peer
	src := NewPollingSource("conversation:"+p.ID, c.clock, c.interval, func(ctx context.Context) {
		c.fetch(ctx, gen, p)
	})

	c.mu.Lock()
	if c.gen != gen {
		// Another Select raced in; its source owns the conversation.
		c.mu.Unlock()
		return
	}
	c.source = src
	c.mu.Unlock()
	src.Start()
}

// Stop tears down polling without selecting a new contact.
func (c *Conversation) Stop() {
	c.Select(nil)
}

// fetch is one poll tick for the given generation. The first committed
// fetch is the Loading one; later ticks are background polls.
func (c *Conversation) fetch(ctx context.Context, gen uint64, peer model.User) {
	me, ok := c.session.CurrentUser()
	if !ok {
		return
	}

	fetched, err := c.api.ListMessages(ctx, me.ID, peer.ID, c.pageSize)
	if err != nil {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		if !c.loaded {
			// Initial load failure: surface a dedicated error state.
			c.lastErr = err
			c.mu.Unlock()
			c.listener.ConversationFailed(peer.ID, err)
			return
		}
		// Polling failure: silent, retried next tick.
		c.mu.Unlock()
		zap.L().Warn("conversation poll failed",
			zap.String("peerId", peer.ID), zap.Error(err))
		return
	}

	// Server sends newest first; display order is chronological.
	for i, j := 0, len(fetched)-1; i < j; i, j = i+1, j-1 {
		fetched[i], fetched[j] = fetched[j], fetched[i]
	}

	// Mark incoming unread messages as read, best effort. On success
	// the read flags are patched into the snapshot before commit; on
	// failure the messages stay unread as fetched and the user gets a
	// non-fatal notice.
	var unreadIdx []int
	var unreadIDs []string
	for i, m := range fetched {
		if !m.Read && m.ReceiverID == me.ID {
			unreadIdx = append(unreadIdx, i)
			unreadIDs = append(unreadIDs, m.ID)
		}
	}
	if len(unreadIDs) > 0 {
		if err := c.api.MarkMessagesRead(ctx, unreadIDs); err == nil {
			for _, i := range unreadIdx {
				fetched[i].Read = true
			}
		} else {
			zap.L().Warn("mark messages read failed",
				zap.String("peerId", peer.ID), zap.Error(err))
			c.listener.Notify("could not mark messages as read")
		}
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	merged := mergePending(fetched, c.msgs, me.ID)
	first := !c.loaded
	c.loaded = true
	c.lastErr = nil
	if !first && model.MessagesEqual(c.msgs, merged) {
		// Unchanged snapshot: no commit, no re-render signal.
		c.mu.Unlock()
		return
	}

	hint := ScrollNone
	switch {
	case first:
		hint = ScrollJump
	case len(merged) > len(c.msgs):
		hint = ScrollAnimate
	}
	c.msgs = merged
	snapshot := make([]model.Message, len(merged))
	copy(snapshot, merged)
	c.mu.Unlock()

	c.listener.MessagesUpdated(peer.ID, snapshot, hint)
}

// mergePending keeps optimistic local messages that the fetched
// snapshot does not cover yet: a pending message survives until a
// server record from the same sender with the same body shows up (the
// composer replaces it explicitly on confirmation).
func mergePending(fetched, current []model.Message, meID string) []model.Message {
	out := fetched
	for _, m := range current {
		if !m.Pending() {
			continue
		}
		matched := false
		for _, f := range fetched {
			if f.SenderID == meID && f.Body == m.Body {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, m)
		}
	}
	return out
}

// Peer returns a copy of the selected contact, or nil.
func (c *Conversation) Peer() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.peer == nil {
		return nil
	}
	p := *c.peer
	return &p
}

// Messages returns a copy of the displayed message list.
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// Loaded reports whether the initial fetch for the selected contact
// has committed.
func (c *Conversation) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Err returns the initial-load error, if the conversation is in its
// error state.
func (c *Conversation) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// AppendLocal appends an optimistic message for the selected contact.
// It returns false when the message's receiver no longer matches the
// selection, which makes a send racing a contact switch harmless.
func (c *Conversation) AppendLocal(m model.Message) bool {
	c.mu.Lock()
	if c.peer == nil || c.peer.ID != m.ReceiverID {
		c.mu.Unlock()
		return false
	}
	c.msgs = append(c.msgs, m)
	peerID := c.peer.ID
	snapshot := make([]model.Message, len(c.msgs))
	copy(snapshot, c.msgs)
	c.mu.Unlock()

	c.listener.MessagesUpdated(peerID, snapshot, ScrollAnimate)
	return true
}

// ReplaceLocal swaps the message with tempID for the server-confirmed
// record, keeping its list position. A no-op when the message is gone
// (rolled back or cleared by a contact switch).
func (c *Conversation) ReplaceLocal(tempID string, confirmed model.Message) {
	c.mu.Lock()
	idx := -1
	for i, m := range c.msgs {
		if m.ID == tempID {
			idx = i
			break
		}
	}
	if idx < 0 || c.peer == nil {
		c.mu.Unlock()
		return
	}
	c.msgs[idx] = confirmed
	peerID := c.peer.ID
	snapshot := make([]model.Message, len(c.msgs))
	copy(snapshot, c.msgs)
	c.mu.Unlock()

	c.listener.MessagesUpdated(peerID, snapshot, ScrollNone)
}

// RemoveLocal drops the optimistic message with tempID, used when the
// send failed. A no-op when the message is already gone.
func (c *Conversation) RemoveLocal(tempID string) {
	c.mu.Lock()
	idx := -1
	for i, m := range c.msgs {
		if m.ID == tempID {
			idx = i
			break
		}
	}
	if idx < 0 || c.peer == nil {
		c.mu.Unlock()
		return
	}
	c.msgs = append(c.msgs[:idx], c.msgs[idx+1:]...)
	peerID := c.peer.ID
	snapshot := make([]model.Message, len(c.msgs))
	copy(snapshot, c.msgs)
	c.mu.Unlock()

	c.listener.MessagesUpdated(peerID, snapshot, ScrollNone)
}
