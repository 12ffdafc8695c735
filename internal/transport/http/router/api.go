package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"team-directory/internal/core/auth"
	"team-directory/internal/core/server"
	mdw "team-directory/internal/transport/http/middleware"
	resp "team-directory/internal/transport/http/response"
)

// Limits 两个 engine 共用的保护参数
type Limits struct {
	RatePerIP      rate.Limit
	Burst          int
	MaxInFlight    int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		RatePerIP:      20,
		Burst:          40,
		MaxInFlight:    256,
		MaxBodyBytes:   1 << 20,
		RequestTimeout: 25 * time.Second,
	}
}

// 中间件
func baseEngine(l *zap.Logger, lim Limits) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(lim.RatePerIP, lim.Burst, 10*time.Minute),
		mdw.ConcurrencyLimit(lim.MaxInFlight),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout),
		mdw.SimpleRecovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l, "/health", "/metrics"),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1})) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "route not found") })
	return r
}

func NewAPIEngine(l *zap.Logger, reg *Registry, sessions *auth.Sessions, lim Limits) *gin.Engine {
	r := baseEngine(l, lim)

	// 前缀
	api := r.Group("/api/v1")

	// 鉴权分组（/me、/auth/logout 挂这里，才能拿到当前用户）
	authed := api.Group("")
	authed.Use(mdw.Auth(sessions, ""))

	reg.MountAllAPI(Routes{Public: api, Authed: authed})
	return r
}
