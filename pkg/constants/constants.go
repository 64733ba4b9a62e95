package constants

import "time"

const (
	UNSEEN_POLL_INTERVAL       = 5 * time.Second // global unseen-message poll cadence
	CONVERSATION_POLL_INTERVAL = 4 * time.Second // per-conversation poll cadence
	MESSAGE_PAGE_SIZE          = 40              // most-recent messages fetched per conversation load
	USER_PAGE_LIMIT            = 200             // directory page size
	TEMP_MESSAGE_ID_PREFIX     = "temp-"         // reserved prefix, never produced by the server
)
