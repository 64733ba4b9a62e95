package stubserver

import (
	"aqua_chat_client/internal/dto/request"
	"aqua_chat_client/internal/dto/respond"
	"aqua_chat_client/pkg/constants"

	"github.com/gin-gonic/gin"
)

// ListUsers returns one page of the user directory.
// GET /users?limit=&offset=
func (s *Server) ListUsers(c *gin.Context) {
	var req request.ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleParamError(c, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = constants.USER_PAGE_LIMIT
	}

	users, total := s.store.ListUsers(req.Limit, req.Offset)
	handleSuccess(c, respond.UserListRespond{
		Users: users,
		PaginationInfo: respond.PaginationInfo{
			Total:  total,
			Limit:  req.Limit,
			Offset: req.Offset,
		},
	})
}

// SearchUsers runs the email search. Role filtering happens on the
// client; the server only narrows by email.
// GET /users/search?email=
func (s *Server) SearchUsers(c *gin.Context) {
	var req request.SearchUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleParamError(c, err)
		return
	}

	users := s.store.SearchByEmail(req.Email)
	handleSuccess(c, respond.UserListRespond{
		Users: users,
		PaginationInfo: respond.PaginationInfo{
			Total: len(users),
			Limit: len(users),
		},
	})
}

// GetUser returns a single user record.
// GET /users/:id
func (s *Server) GetUser(c *gin.Context) {
	user, err := s.store.GetUser(c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	handleSuccess(c, user)
}
