package stubserver

import (
	"aqua_chat_client/internal/dto/request"
	"aqua_chat_client/pkg/constants"
	"aqua_chat_client/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ListMessages returns the newest messages between the caller and the
// other party of the sender/receiver pair. The caller must be one side
// of the pair.
// GET /messages?senderId=&receiverId=&limit=&sortBy=created_at&sortDesc=true
func (s *Server) ListMessages(c *gin.Context) {
	var req request.ListMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleParamError(c, err)
		return
	}

	caller := callerID(c)
	if caller != req.SenderID && caller != req.ReceiverID {
		handleError(c, errorx.New(errorx.CodeUnauthorized, "not a party of this conversation"))
		return
	}
	if req.Limit <= 0 {
		req.Limit = constants.MESSAGE_PAGE_SIZE
	}

	handleSuccess(c, s.store.Conversation(req.SenderID, req.ReceiverID, req.Limit))
}

// SendMessage creates a message from the caller to the receiver and
// returns the record with its server-assigned id.
// POST /messages
func (s *Server) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleParamError(c, err)
		return
	}

	if _, err := s.store.GetUser(req.ReceiverID); err != nil {
		handleError(c, err)
		return
	}

	handleSuccess(c, s.store.CreateMessage(callerID(c), req.ReceiverID, req.Message))
}

// MarkRead flags the listed messages as read, scoped to messages
// addressed to the caller. Idempotent.
// POST /messages/markRead
func (s *Server) MarkRead(c *gin.Context) {
	var req request.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleParamError(c, err)
		return
	}

	s.store.MarkRead(req.MessageIDs, callerID(c))
	handleSuccess(c, nil)
}

// Unseen returns every unread message addressed to the caller.
// GET /messages/unseen
func (s *Server) Unseen(c *gin.Context) {
	handleSuccess(c, s.store.Unseen(callerID(c)))
}
