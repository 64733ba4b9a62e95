package request

// SendMessageRequest creates a new message addressed to ReceiverID.
// The sender is taken from the bearer token.
type SendMessageRequest struct {
	Message    string `json:"message" binding:"required"`
	ReceiverID string `json:"receiverId" binding:"required"`
}
