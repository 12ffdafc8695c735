package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"team-directory/internal/core/apperr"
	"team-directory/internal/core/auth"
	"team-directory/internal/core/clock"
	"team-directory/internal/service"
	httpez "team-directory/internal/transport/http/ez"
	mdw "team-directory/internal/transport/http/middleware"
	"team-directory/internal/transport/http/router"
)

type AuthHandler struct {
	sessions *auth.Sessions
	clock    clock.Clock
}

func NewAuthHandler(s *auth.Sessions, c clock.Clock) *AuthHandler {
	if c == nil {
		c = clock.Real{}
	}
	return &AuthHandler{sessions: s, clock: c}
}

func (h *AuthHandler) Priority() int { return 10 }

type loginOut struct {
	User *auth.AuthUser `json:"user"`
	*auth.Token
}

type logoutOut struct {
	LoggedOut bool `json:"loggedOut"`
}

func (h *AuthHandler) MountAPI(rt router.Routes) {
	public := httpez.New(rt.Public)
	authed := httpez.New(rt.Authed)

	// /auth/login：账号密码换令牌
	httpez.RegisterAction(public, httpez.Action[auth.Credentials, service.Envelope[loginOut]]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *auth.Credentials) (service.Envelope[loginOut], error) {
			u, tok, err := h.sessions.Login(c.Request.Context(), *in)
			if err != nil {
				return service.Failure[loginOut](h.clock.Now(), err, "Login failed"), nil
			}
			return service.Success(h.clock.Now(), loginOut{User: u, Token: tok}), nil
		},
	})

	httpez.RegisterAction(authed, httpez.Action[struct{}, service.Envelope[logoutOut]]{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.Envelope[logoutOut], error) {
			if err := h.sessions.Logout(c.Request.Context(), c.GetString(mdw.KeyToken)); err != nil {
				return service.Failure[logoutOut](h.clock.Now(), err, "Logout failed"), nil
			}
			return service.Success(h.clock.Now(), logoutOut{LoggedOut: true}), nil
		},
	})

	httpez.RegisterAction(authed, httpez.Action[struct{}, service.Envelope[auth.AuthUser]]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.Envelope[auth.AuthUser], error) {
			u := mdw.CurrentUser(c)
			if u == nil {
				return service.Envelope[auth.AuthUser]{}, apperr.Unauthorized("unauthorized")
			}
			return service.Success(h.clock.Now(), *u), nil
		},
	})
}
