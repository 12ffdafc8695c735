package response

import (
	"time"

	"github.com/gin-gonic/gin"

	"team-directory/internal/core/apperr"
)

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Result 业务层返回的统一响应（service.Envelope 及其组合）
type Result interface {
	OK() bool
	ErrKind() apperr.Kind
}

// Resp 传输层自己产生的响应，字段与业务响应一致
type Resp struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`

	kind apperr.Kind
}

func (r Resp) OK() bool             { return r.Success }
func (r Resp) ErrKind() apperr.Kind { return r.kind }

// OK 成功响应
func OK(data any) Resp {
	return Resp{Success: true, Data: data, Timestamp: now()}
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return Resp{Success: false, Error: msg, Timestamp: now()}
}

// FromError 按错误类别生成失败响应
func FromError(err error) Resp {
	return Resp{Success: false, Error: apperr.Message(err), Timestamp: now(), kind: apperr.KindOf(err)}
}

func now() string { return time.Now().UTC().Format(timeLayout) }

// Write 成功写 200（或 okStatus），失败按错误类别映射状态码
func Write(c *gin.Context, r Result, okStatus ...int) {
	if r.OK() {
		status := CodeOK
		if len(okStatus) > 0 {
			status = okStatus[0]
		}
		c.JSON(status, r)
		return
	}
	c.JSON(StatusOf(r.ErrKind()), r)
}

// Abort 中断后续 handler 并写失败响应
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, Error(code, msg))
}
