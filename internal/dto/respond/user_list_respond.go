package respond

import "aqua_chat_client/internal/model"

// PaginationInfo describes a directory page.
type PaginationInfo struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// UserListRespond is the directory listing payload.
type UserListRespond struct {
	Users          []model.User   `json:"users"`
	PaginationInfo PaginationInfo `json:"paginationInfo"`
}
