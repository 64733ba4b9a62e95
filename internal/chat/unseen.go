package chat

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"aqua_chat_client/internal/model"
)

// UnseenPoller maintains the snapshot of unread messages addressed to
// the current user, polled on a fixed interval for the lifetime of the
// session.
//
// State machine: Idle (no token) <-> Polling. The ticker keeps running
// either way; a tick without a token does nothing, which is the Idle
// state. A tick after the token reappears re-fetches, and Refresh gives
// the host an immediate fetch on (re)authentication so the first update
// never waits a full interval.
type UnseenPoller struct {
	api     MessageAPI
	session Session
	source  *PollingSource

	// onChange, when set, fires after each committed snapshot change
	// with the new snapshot. Runs on the poller goroutine.
	onChange func([]model.Message)

	mu       sync.Mutex
	snapshot []model.Message
}

// NewUnseenPoller builds a stopped poller. onChange may be nil.
func NewUnseenPoller(api MessageAPI, session Session, clock clockwork.Clock, interval time.Duration, onChange func([]model.Message)) *UnseenPoller {
	u := &UnseenPoller{
		api:      api,
		session:  session,
		onChange: onChange,
	}
	u.source = NewPollingSource("unseen", clock, interval, u.poll)
	return u
}

// Start arms the poll loop. The first fetch happens immediately.
func (u *UnseenPoller) Start() { u.source.Start() }

// Stop disarms the poll loop.
func (u *UnseenPoller) Stop() { u.source.Stop() }

// Refresh runs one poll inline. Call after (re)authentication.
// Overlap with a ticker-driven poll is tolerated: polls are idempotent
// full reads and the last settled one wins.
func (u *UnseenPoller) Refresh(ctx context.Context) { u.poll(ctx) }

// poll is one tick: fetch the full unseen snapshot and commit it only
// when it structurally differs from the current one. Failures are
// logged and silently retried next tick; polling is best effort.
func (u *UnseenPoller) poll(ctx context.Context) {
	me, ok := u.session.CurrentUser()
	if !ok {
		return // Idle
	}
	if _, ok := u.session.Token(); !ok {
		return // Idle
	}

	messages, err := u.api.ListUnseen(ctx)
	if err != nil {
		zap.L().Warn("unseen poll failed", zap.Error(err))
		return
	}

	// The endpoint is current-user-scoped, but the unread derivation
	// depends on receiver==me && !read, so enforce it here.
	fresh := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.ReceiverID == me.ID && !m.Read {
			fresh = append(fresh, m)
		}
	}

	u.mu.Lock()
	if model.MessagesEqual(u.snapshot, fresh) {
		u.mu.Unlock()
		return
	}
	u.snapshot = fresh
	u.mu.Unlock()

	if u.onChange != nil {
		u.onChange(fresh)
	}
}

// Snapshot returns a copy of the current unseen set.
func (u *UnseenPoller) Snapshot() []model.Message {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]model.Message, len(u.snapshot))
	copy(out, u.snapshot)
	return out
}

// UnreadCountsBySender derives per-sender unread counts from the
// current snapshot. Pure read; safe to call from any goroutine.
func (u *UnseenPoller) UnreadCountsBySender() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	counts := make(map[string]int, len(u.snapshot))
	for _, m := range u.snapshot {
		counts[m.SenderID]++
	}
	return counts
}
