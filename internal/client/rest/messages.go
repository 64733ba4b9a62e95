package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"aqua_chat_client/internal/dto/request"
	"aqua_chat_client/internal/model"
)

// ListMessages fetches up to limit of the most recent messages between
// the current user and peerID, newest first as sorted by the server.
func (c *Client) ListMessages(ctx context.Context, currentUserID, peerID string, limit int) ([]model.Message, error) {
	query := url.Values{}
	query.Set("senderId", currentUserID)
	query.Set("receiverId", peerID)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	query.Set("sortBy", "created_at")
	query.Set("sortDesc", "true")

	var messages []model.Message
	if err := c.do(ctx, http.MethodGet, "/messages", query, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage creates a message addressed to receiverID and returns the
// server-confirmed record with its assigned id.
func (c *Client) SendMessage(ctx context.Context, receiverID, body string) (*model.Message, error) {
	req := request.SendMessageRequest{
		Message:    body,
		ReceiverID: receiverID,
	}
	var msg model.Message
	if err := c.do(ctx, http.MethodPost, "/messages", nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MarkMessagesRead flags the listed ids as read. Passing no ids is a
// no-op without a request.
func (c *Client) MarkMessagesRead(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	req := request.MarkReadRequest{MessageIDs: ids}
	return c.do(ctx, http.MethodPost, "/messages/markRead", nil, req, nil)
}

// ListUnseen fetches the full snapshot of unread messages addressed to
// the current user.
func (c *Client) ListUnseen(ctx context.Context) ([]model.Message, error) {
	var messages []model.Message
	if err := c.do(ctx, http.MethodGet, "/messages/unseen", nil, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
