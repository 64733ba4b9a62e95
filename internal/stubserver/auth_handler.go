package stubserver

import (
	"aqua_chat_client/internal/dto/request"
	"aqua_chat_client/internal/dto/respond"
	"aqua_chat_client/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// Login authenticates against the in-memory store and mints an access
// token.
// POST /login
func (s *Server) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleParamError(c, err)
		return
	}

	user, err := s.store.Authenticate(req.Username, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}

	token, err := jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		handleError(c, err)
		return
	}

	handleSuccess(c, respond.LoginRespond{
		User:        user,
		AccessToken: token,
	})
}
