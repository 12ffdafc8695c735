package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"team-directory/internal/core/auth"
	mdw "team-directory/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, reg *Registry, sessions *auth.Sessions, lim Limits) *gin.Engine {
	r := baseEngine(l, lim)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.Auth(sessions, auth.RoleAdmin))

	reg.MountAllAdmin(admin)
	return r
}
