package stubserver

import (
	"net/http"
	"strings"

	"aqua_chat_client/pkg/errorx"
	"aqua_chat_client/pkg/util/jwt"

	"github.com/gin-gonic/gin"
)

// jwtAuth validates the bearer token and stores the caller's identity
// in the request context.
func jwtAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "missing credentials",
			})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "expected a Bearer token",
			})
			return
		}

		claims, err := jwt.ParseToken(parts[1])
		if err != nil || claims.Subject != "access_token" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "token expired or invalid",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// callerID returns the authenticated user id set by jwtAuth.
func callerID(c *gin.Context) string {
	return c.GetString("user_id")
}
