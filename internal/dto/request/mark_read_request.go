package request

// MarkReadRequest flags the listed messages as read. The call is
// idempotent: ids that are already read or unknown are ignored.
type MarkReadRequest struct {
	MessageIDs []string `json:"messageIds" binding:"required,min=1"`
}
