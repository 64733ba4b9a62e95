package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"aqua_chat_client/internal/client/session"
	"aqua_chat_client/internal/model"
)

// fakeAPI implements UserDirectory and MessageAPI with overridable
// function fields, in the spirit of the hand-written service stubs in
// test/api.
type fakeAPI struct {
	mu sync.Mutex

	listUsersFn   func(ctx context.Context, limit, offset int) ([]model.User, error)
	searchFn      func(ctx context.Context, email string) ([]model.User, error)
	getUserFn     func(ctx context.Context, id string) (*model.User, error)
	listMsgsFn    func(ctx context.Context, currentUserID, peerID string, limit int) ([]model.Message, error)
	sendFn        func(ctx context.Context, receiverID, body string) (*model.Message, error)
	markReadFn    func(ctx context.Context, ids []string) error
	listUnseenFn  func(ctx context.Context) ([]model.Message, error)

	unseenCalls int
	listCalls   int
	markCalls   [][]string

	// fetchDone, when non-nil, receives after every ListMessages call,
	// so tests can wait for a poll tick to settle.
	fetchDone chan struct{}
}

func (f *fakeAPI) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	if f.listUsersFn != nil {
		return f.listUsersFn(ctx, limit, offset)
	}
	return nil, nil
}

func (f *fakeAPI) SearchUsersByEmail(ctx context.Context, email string) ([]model.User, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, email)
	}
	return nil, nil
}

func (f *fakeAPI) GetUser(ctx context.Context, id string) (*model.User, error) {
	if f.getUserFn != nil {
		return f.getUserFn(ctx, id)
	}
	return &model.User{ID: id}, nil
}

func (f *fakeAPI) ListMessages(ctx context.Context, currentUserID, peerID string, limit int) ([]model.Message, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listMsgsFn
	done := f.fetchDone
	f.mu.Unlock()

	var msgs []model.Message
	var err error
	if fn != nil {
		msgs, err = fn(ctx, currentUserID, peerID, limit)
	}
	if done != nil {
		done <- struct{}{}
	}
	return msgs, err
}

func (f *fakeAPI) SendMessage(ctx context.Context, receiverID, body string) (*model.Message, error) {
	if f.sendFn != nil {
		return f.sendFn(ctx, receiverID, body)
	}
	return &model.Message{ID: "srv-1", ReceiverID: receiverID, Body: body}, nil
}

func (f *fakeAPI) MarkMessagesRead(ctx context.Context, ids []string) error {
	f.mu.Lock()
	f.markCalls = append(f.markCalls, append([]string(nil), ids...))
	fn := f.markReadFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, ids)
	}
	return nil
}

func (f *fakeAPI) ListUnseen(ctx context.Context) ([]model.Message, error) {
	f.mu.Lock()
	f.unseenCalls++
	fn := f.listUnseenFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (f *fakeAPI) markedIDs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.markCalls))
	copy(out, f.markCalls)
	return out
}

func (f *fakeAPI) listMessageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeAPI) setListMessages(fn func(ctx context.Context, currentUserID, peerID string, limit int) ([]model.Message, error)) {
	f.mu.Lock()
	f.listMsgsFn = fn
	f.mu.Unlock()
}

// loggedIn returns a session authenticated as the given user.
func loggedIn(u model.User) *session.Session {
	s := session.New()
	s.SetAuthenticated(u, "test-token")
	return s
}

// convEvent records one MessagesUpdated callback.
type convEvent struct {
	peerID   string
	messages []model.Message
	hint     ScrollHint
}

// recListener records conversation and composer callbacks and signals
// each MessagesUpdated on a channel.
type recListener struct {
	mu       sync.Mutex
	events   []convEvent
	failures []error
	notices  []string
	drafts   []string
	updated  chan struct{}
}

func newRecListener() *recListener {
	return &recListener{updated: make(chan struct{}, 64)}
}

func (l *recListener) MessagesUpdated(peerID string, messages []model.Message, hint ScrollHint) {
	l.mu.Lock()
	l.events = append(l.events, convEvent{peerID: peerID, messages: messages, hint: hint})
	l.mu.Unlock()
	l.updated <- struct{}{}
}

func (l *recListener) ConversationFailed(peerID string, err error) {
	l.mu.Lock()
	l.failures = append(l.failures, err)
	l.mu.Unlock()
	l.updated <- struct{}{}
}

func (l *recListener) Notify(text string) {
	l.mu.Lock()
	l.notices = append(l.notices, text)
	l.mu.Unlock()
}

func (l *recListener) RestoreDraft(text string) {
	l.mu.Lock()
	l.drafts = append(l.drafts, text)
	l.mu.Unlock()
}

// wait blocks until the next MessagesUpdated/ConversationFailed.
func (l *recListener) wait(t *testing.T) {
	t.Helper()
	select {
	case <-l.updated:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for a listener event")
	}
}

func (l *recListener) eventCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *recListener) event(i int) convEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[i]
}

func (l *recListener) lastEvent() convEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events[len(l.events)-1]
}

func (l *recListener) noticeCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.notices)
}

func (l *recListener) failureCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures)
}

func (l *recListener) restoredDrafts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.drafts...)
}
