package respond

import "aqua_chat_client/internal/model"

// LoginRespond carries the authenticated user and their access token.
type LoginRespond struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"accessToken"`
}
