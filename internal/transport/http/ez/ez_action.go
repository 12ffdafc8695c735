package ez

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"team-directory/internal/core/apperr"
	resp "team-directory/internal/transport/http/response"
)

// EZ 路由分组的轻封装
type EZ struct{ g gin.IRoutes }

func New(g gin.IRoutes) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON    Binder = "json"     // 从 JSON 绑定
	BindQuery   Binder = "query"    // 从 URL ?a=b 绑定
	BindURI     Binder = "uri"      // 从路径参数 :id 绑定
	BindURIJSON Binder = "uri+json" // 路径参数 + JSON 体
	BindNone    Binder = "none"     // 不绑定，自己从 c.Param / c.Query 取
)

// 动作定义：I 入参，O 出参（业务层的统一响应）
type Action[I any, O resp.Result] struct {
	Method   string // "GET" | "POST" | "PUT" | "PATCH" | "DELETE"
	Path     string // 例："/auth/login"、"/users/:id"
	Binder   Binder // 绑定方式
	OKStatus int    // 成功时的状态码，默认 200
	Handler  func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O resp.Result](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 绑定入参
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			resp.Write(c, resp.FromError(apperr.Validation(bindMessage(err))))
			return
		}

		// 2) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Write(c, resp.FromError(err))
			return
		}

		// 3) 写响应（失败时按错误类别映射状态码）
		status := a.OKStatus
		if status == 0 {
			status = http.StatusOK
		}
		resp.Write(c, out, status)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func bind(c *gin.Context, b Binder, in any) error {
	switch b {
	case BindJSON:
		return c.ShouldBindJSON(in)
	case BindQuery:
		return c.ShouldBindQuery(in)
	case BindURI:
		return c.ShouldBindUri(in)
	case BindURIJSON:
		if err := c.ShouldBindUri(in); err != nil {
			return err
		}
		return c.ShouldBindJSON(in)
	default: // BindNone: 不绑定
		return nil
	}
}

// bindMessage 请求体为空或格式错误时给出统一提示
func bindMessage(err error) string {
	msg := err.Error()
	switch {
	case msg == "EOF":
		return "Request body is required"
	case strings.Contains(msg, "invalid character"), strings.Contains(msg, "cannot unmarshal"):
		return "Invalid request body: " + msg
	}
	return msg
}
