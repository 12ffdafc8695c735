package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"team-directory/internal/domain"
	"team-directory/internal/service"
	httpez "team-directory/internal/transport/http/ez"
	"team-directory/internal/transport/http/router"
)

// UserHandler 目录读接口挂在用户端，写接口挂在管理端
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Priority() int { return 20 }

type searchQuery struct {
	Q             string `form:"q"`
	CaseSensitive bool   `form:"caseSensitive"`
}

type idURI struct {
	ID string `uri:"id"`
}

type departmentURI struct {
	Department string `uri:"department"`
}

type roleURI struct {
	Role string `uri:"role"`
}

type locationURI struct {
	Location string `uri:"location"`
}

type patchIn struct {
	ID string `uri:"id" json:"-"`
	domain.UserPatch
}

func (h *UserHandler) MountAPI(rt router.Routes) {
	ez := httpez.New(rt.Public)

	httpez.RegisterAction(ez, httpez.Action[service.PageParams, service.UserPage]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *service.PageParams) (service.UserPage, error) {
			return h.svc.GetAllUsers(c.Request.Context(), *in), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[searchQuery, service.UserList]{
		Method: http.MethodGet,
		Path:   "/users/search",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *searchQuery) (service.UserList, error) {
			opt := service.SearchOptions{CaseSensitive: in.CaseSensitive}
			return h.svc.SearchUsers(c.Request.Context(), in.Q, opt), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, service.UserList]{
		Method: http.MethodGet,
		Path:   "/users/active",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (service.UserList, error) {
			return h.svc.GetActiveUsers(c.Request.Context()), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[idURI, service.Envelope[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (service.Envelope[domain.User], error) {
			return h.svc.GetUserByID(c.Request.Context(), in.ID), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[departmentURI, service.UserList]{
		Method: http.MethodGet,
		Path:   "/departments/:department/users",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *departmentURI) (service.UserList, error) {
			return h.svc.GetUsersByDepartment(c.Request.Context(), in.Department), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[roleURI, service.UserList]{
		Method: http.MethodGet,
		Path:   "/roles/:role/users",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *roleURI) (service.UserList, error) {
			return h.svc.GetUsersByRole(c.Request.Context(), in.Role), nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[locationURI, service.UserList]{
		Method: http.MethodGet,
		Path:   "/locations/:location/users",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *locationURI) (service.UserList, error) {
			return h.svc.GetUsersByLocation(c.Request.Context(), in.Location), nil
		},
	})
}

func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	// admin 角色由管理端分组的 Auth 中间件统一校验
	ez := httpez.New(admin)

	httpez.RegisterAction(ez, httpez.Action[domain.NewUser, service.Envelope[domain.User]]{
		Method:   http.MethodPost,
		Path:     "/users",
		Binder:   httpez.BindJSON,
		OKStatus: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.NewUser) (service.Envelope[domain.User], error) {
			return h.svc.CreateUser(c.Request.Context(), *in), nil
		},
	})

	update := func(c *gin.Context, in *patchIn) (service.Envelope[domain.User], error) {
		return h.svc.UpdateUser(c.Request.Context(), in.ID, in.UserPatch), nil
	}
	for _, m := range []string{http.MethodPatch, http.MethodPut} {
		httpez.RegisterAction(ez, httpez.Action[patchIn, service.Envelope[domain.User]]{
			Method:  m,
			Path:    "/users/:id",
			Binder:  httpez.BindURIJSON,
			Handler: update,
		})
	}
}
