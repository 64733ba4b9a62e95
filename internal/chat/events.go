package chat

import "aqua_chat_client/internal/model"

// ScrollHint tells a UI how to follow a message-list update. The
// distinction is part of the observable contract: catching up on a
// fresh conversation jumps, newly arriving messages animate.
type ScrollHint int

const (
	// ScrollNone: content changed in place, no follow needed.
	ScrollNone ScrollHint = iota
	// ScrollJump: first successful load, jump to the latest message
	// without animation.
	ScrollJump
	// ScrollAnimate: a polling update or local send added messages,
	// animate towards the latest one.
	ScrollAnimate
)

// ConversationListener receives conversation state changes.
//
// Callbacks run on poller goroutines; implementations that render must
// marshal onto their own loop.
type ConversationListener interface {
	// MessagesUpdated delivers the committed message list. Only called
	// when the list structurally changed.
	MessagesUpdated(peerID string, messages []model.Message, hint ScrollHint)
	// ConversationFailed reports a failed initial load, when there is
	// still nothing to display. Polling failures are never reported.
	ConversationFailed(peerID string, err error)
	// Notify surfaces a non-fatal problem (failed mark-as-read), toast
	// style.
	Notify(text string)
}

// ComposerListener receives composer-side effects.
type ComposerListener interface {
	// RestoreDraft puts text back into the input after a failed send so
	// the user can retry without retyping.
	RestoreDraft(text string)
	// Notify surfaces a non-fatal send failure.
	Notify(text string)
}

// NopConversationListener is a ConversationListener that ignores
// everything. Embed it to implement only the callbacks of interest.
type NopConversationListener struct{}

func (NopConversationListener) MessagesUpdated(string, []model.Message, ScrollHint) {}
func (NopConversationListener) ConversationFailed(string, error)                    {}
func (NopConversationListener) Notify(string)                                       {}

// NopComposerListener is a ComposerListener that ignores everything.
type NopComposerListener struct{}

func (NopComposerListener) RestoreDraft(string) {}
func (NopComposerListener) Notify(string)       {}
