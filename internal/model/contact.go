package model

// Contact is a User as projected for the chat sidebar: never persisted,
// always recomputed from the directory, the pinned set and the current
// unread counts.
type Contact struct {
	User
	UnreadCount int  `json:"unreadCount"`
	Pinned      bool `json:"pinned"`
}
