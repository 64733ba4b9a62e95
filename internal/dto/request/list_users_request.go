package request

// ListUsersRequest pages through the full user directory.
type ListUsersRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// SearchUsersRequest is the server-side email search used by the
// officer search path.
type SearchUsersRequest struct {
	Email string `form:"email" binding:"required"`
}
