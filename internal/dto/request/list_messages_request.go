package request

// ListMessagesRequest fetches the message history between two users.
// The backend returns messages matching either direction of the
// sender/receiver pair, sorted by SortBy.
type ListMessagesRequest struct {
	SenderID   string `form:"senderId" binding:"required"`
	ReceiverID string `form:"receiverId" binding:"required"`
	Limit      int    `form:"limit"`
	SortBy     string `form:"sortBy"`
	SortDesc   bool   `form:"sortDesc"`
}
