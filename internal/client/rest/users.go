package rest

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"aqua_chat_client/internal/dto/respond"
	"aqua_chat_client/internal/model"
)

// ListUsers fetches one directory page. The result is a snapshot; no
// caching is implied beyond the single call.
func (c *Client) ListUsers(ctx context.Context, limit, offset int) ([]model.User, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var rsp respond.UserListRespond
	if err := c.do(ctx, http.MethodGet, "/users", query, nil, &rsp); err != nil {
		return nil, err
	}
	return rsp.Users, nil
}

// SearchUsersByEmail runs the server-side email search used by the
// officer search path.
func (c *Client) SearchUsersByEmail(ctx context.Context, email string) ([]model.User, error) {
	query := url.Values{}
	query.Set("email", email)

	var rsp respond.UserListRespond
	if err := c.do(ctx, http.MethodGet, "/users/search", query, nil, &rsp); err != nil {
		return nil, err
	}
	return rsp.Users, nil
}

// GetUser fetches a single user record by id.
func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
