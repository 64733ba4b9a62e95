// Package rest is the thin HTTP client for the chat backend. It speaks
// the backend's {code,msg,data} envelope and attaches the bearer token
// supplied by the session provider on every call.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"aqua_chat_client/pkg/errorx"
)

// TokenProvider supplies the current bearer token. The second return
// value is false when no valid session exists; the client then fails
// fast without issuing a request.
type TokenProvider interface {
	Token() (string, bool)
}

// Client calls the chat backend REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
}

// NewClient builds a Client. A non-positive timeout falls back to 10s;
// the backend contract specifies no timeout, so this is a client-side
// choice (see DESIGN.md).
func NewClient(baseURL string, timeout time.Duration, tokens TokenProvider) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// envelope is the backend's uniform response wrapper.
type envelope struct {
	Code int             `json:"code"`
	Msg  any             `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// do performs one request/response cycle. out, when non-nil, receives
// the decoded data field.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	token, ok := c.tokens.Token()
	if !ok {
		return errorx.ErrUnauthorized
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errorx.Wrap(err, errorx.CodeInvalidParam, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errorx.ErrUnauthorized
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "read response of %s %s", method, path)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errorx.Wrapf(err, errorx.CodeServerBusy, "decode response of %s %s", method, path)
	}
	if env.Code != errorx.CodeSuccess {
		return errorx.Newf(env.Code, "%s %s: %s", method, path, fmt.Sprint(env.Msg))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errorx.Wrapf(err, errorx.CodeServerBusy, "decode data of %s %s", method, path)
		}
	}
	return nil
}
