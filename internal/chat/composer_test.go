package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"aqua_chat_client/internal/client/session"
	"aqua_chat_client/internal/model"
)

// selectedConversation returns a conversation with peerUser selected and
// one committed message, without a running poll loop.
func selectedConversation(api *fakeAPI, listener ConversationListener, sess Session) *Conversation {
	conv := NewConversation(api, sess, clockwork.NewFakeClock(), 4*time.Second, 40, listener)
	conv.mu.Lock()
	p := peerUser
	conv.peer = &p
	conv.gen = 1
	conv.loaded = true
	conv.msgs = []model.Message{
		msgAt("m1", peerUser.ID, me.ID, "earlier", true, time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)),
	}
	conv.mu.Unlock()
	return conv
}

func TestComposer_OptimisticSendConfirmed(t *testing.T) {
	confirmed := msgAt("m123", me.ID, peerUser.ID, "hello there", false,
		time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC))
	api := &fakeAPI{
		sendFn: func(ctx context.Context, receiverID, body string) (*model.Message, error) {
			if receiverID != peerUser.ID || body != "hello there" {
				t.Errorf("SendMessage(%q, %q), want (%q, %q)", receiverID, body, peerUser.ID, "hello there")
			}
			m := confirmed
			return &m, nil
		},
	}
	listener := newRecListener()
	sess := loggedIn(me)
	conv := selectedConversation(api, listener, sess)
	cp := NewComposer(api, sess, conv, clockwork.NewFakeClock(), listener)

	cp.SetDraft("hello there")
	if !cp.Send(context.Background()) {
		t.Fatalf("Send returned false for a valid draft")
	}

	// Two renders: the optimistic bubble, then the in-place swap.
	if got := listener.eventCount(); got != 2 {
		t.Fatalf("listener signalled %d times, want 2", got)
	}
	optimistic := listener.event(0)
	if optimistic.hint != ScrollAnimate {
		t.Fatalf("optimistic append hint = %v, want ScrollAnimate", optimistic.hint)
	}
	tempID := optimistic.messages[len(optimistic.messages)-1].ID
	if !strings.HasPrefix(tempID, model.TempIDPrefix) {
		t.Fatalf("optimistic message id %q lacks the %q prefix", tempID, model.TempIDPrefix)
	}
	if !optimistic.messages[len(optimistic.messages)-1].Pending() {
		t.Fatalf("optimistic message not pending")
	}

	swap := listener.event(1)
	if swap.hint != ScrollNone {
		t.Fatalf("confirmation swap hint = %v, want ScrollNone", swap.hint)
	}
	if diff := cmp.Diff([]string{"m1", "m123"}, messageIDs(swap.messages)); diff != "" {
		t.Fatalf("messages after confirmation (-want +got):\n%s", diff)
	}

	if cp.Draft() != "" {
		t.Fatalf("draft %q survived a successful send", cp.Draft())
	}
	if cp.InFlight() {
		t.Fatalf("in-flight flag stuck after send completed")
	}
}

func TestComposer_FailedSendRollsBack(t *testing.T) {
	api := &fakeAPI{
		sendFn: func(ctx context.Context, receiverID, body string) (*model.Message, error) {
			return nil, errors.New("backend rejected the message")
		},
	}
	listener := newRecListener()
	sess := loggedIn(me)
	conv := selectedConversation(api, listener, sess)
	cp := NewComposer(api, sess, conv, clockwork.NewFakeClock(), listener)

	cp.SetDraft("hello")
	if !cp.Send(context.Background()) {
		t.Fatalf("Send returned false for an attempted send")
	}

	// The optimistic bubble is gone again.
	last := listener.lastEvent()
	if diff := cmp.Diff([]string{"m1"}, messageIDs(last.messages)); diff != "" {
		t.Fatalf("messages after rollback (-want +got):\n%s", diff)
	}
	if cp.Draft() != "hello" {
		t.Fatalf("draft = %q after failure, want it restored", cp.Draft())
	}
	if diff := cmp.Diff([]string{"hello"}, listener.restoredDrafts()); diff != "" {
		t.Fatalf("RestoreDraft calls (-want +got):\n%s", diff)
	}
	if got := listener.noticeCount(); got != 1 {
		t.Fatalf("notice count = %d, want 1", got)
	}
	if cp.InFlight() {
		t.Fatalf("in-flight flag stuck after failure")
	}
}

func TestComposer_NoOpSends(t *testing.T) {
	ctx := context.Background()

	t.Run("blank draft", func(t *testing.T) {
		api := &fakeAPI{}
		sess := loggedIn(me)
		conv := selectedConversation(api, newRecListener(), sess)
		cp := NewComposer(api, sess, conv, clockwork.NewFakeClock(), nil)
		cp.SetDraft("   \n\t ")
		if cp.Send(ctx) {
			t.Fatalf("Send accepted a whitespace-only draft")
		}
	})

	t.Run("no selected contact", func(t *testing.T) {
		api := &fakeAPI{}
		sess := loggedIn(me)
		conv := NewConversation(api, sess, clockwork.NewFakeClock(), 4*time.Second, 40, nil)
		cp := NewComposer(api, sess, conv, clockwork.NewFakeClock(), nil)
		cp.SetDraft("hello")
		if cp.Send(ctx) {
			t.Fatalf("Send accepted with no contact selected")
		}
		if cp.Draft() != "hello" {
			t.Fatalf("no-op send consumed the draft")
		}
	})

	t.Run("logged out", func(t *testing.T) {
		api := &fakeAPI{}
		sess := session.New()
		conv := selectedConversation(api, newRecListener(), sess)
		cp := NewComposer(api, sess, conv, clockwork.NewFakeClock(), nil)
		cp.SetDraft("hello")
		if cp.Send(ctx) {
			t.Fatalf("Send accepted without a session")
		}
	})

	t.Run("send already in flight", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		api := &fakeAPI{
			sendFn: func(ctx context.Context, receiverID, body string) (*model.Message, error) {
				close(started)
				<-release
				m := msgAt("m9", me.ID, receiverID, body, false, time.Now())
				return &m, nil
			},
		}
		sess := loggedIn(me)
		conv := selectedConversation(api, newRecListener(), sess)
		cp := NewComposer(api, sess, conv, clockwork.NewFakeClock(), nil)

		cp.SetDraft("first")
		done := make(chan bool, 1)
		go func() { done <- cp.Send(ctx) }()
		<-started

		cp.SetDraft("second")
		if cp.Send(ctx) {
			t.Fatalf("Send accepted while another send was in flight")
		}

		close(release)
		if !<-done {
			t.Fatalf("original send reported false")
		}
	})
}
