package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"aqua_chat_client/internal/dto/request"
	"aqua_chat_client/internal/dto/respond"
	"aqua_chat_client/pkg/errorx"
)

// Login authenticates against the backend. Unlike every other call it
// needs no bearer token; the returned token is handed to the session
// holder by the caller.
func (c *Client) Login(ctx context.Context, username, password string) (*respond.LoginRespond, error) {
	payload, err := json.Marshal(request.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "encode login request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeInvalidParam, "build login request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "POST /login")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "read login response")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "decode login response")
	}
	if env.Code != errorx.CodeSuccess {
		return nil, errorx.Newf(env.Code, "login: %s", fmt.Sprint(env.Msg))
	}

	var rsp respond.LoginRespond
	if err := json.Unmarshal(env.Data, &rsp); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "decode login data")
	}
	return &rsp, nil
}
