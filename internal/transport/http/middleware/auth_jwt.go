package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"team-directory/internal/core/auth"
	resp "team-directory/internal/transport/http/response"
)

const (
	KeyUser  = "user"
	KeyRole  = "role"
	KeyToken = "token"
)

// Auth 校验 Bearer 令牌（含注销表）；requireRole 非空时还要求角色一致
func Auth(s *auth.Sessions, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		u := s.AuthenticatedUser(c.Request.Context(), tok)
		if u == nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if requireRole != "" && u.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		c.Set(KeyUser, u)
		c.Set(KeyRole, u.Role)
		c.Set(KeyToken, tok)
		c.Next()
	}
}

func BearerToken(c *gin.Context) (string, bool) {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	return tok, tok != ""
}

// CurrentUser 取 Auth 中间件放入的用户
func CurrentUser(c *gin.Context) *auth.AuthUser {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*auth.AuthUser)
	return u
}
