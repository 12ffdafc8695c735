package response

import (
	"net/http"

	"team-directory/internal/core/apperr"
)

// 常见业务 系统级错误码（直接基于 HTTP 语义）
const (
	CodeOK           = http.StatusOK
	CodeBadRequest   = http.StatusBadRequest
	CodeUnauthorized = http.StatusUnauthorized
	CodeForbidden    = http.StatusForbidden
	CodeNotFound     = http.StatusNotFound
	CodeTooMany      = http.StatusTooManyRequests
	CodeServerError  = http.StatusInternalServerError
	CodeUnavailable  = http.StatusServiceUnavailable
	CodeTimeout      = http.StatusGatewayTimeout
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:           "OK",
	CodeBadRequest:   "Bad Request",
	CodeUnauthorized: "Unauthorized",
	CodeForbidden:    "Forbidden",
	CodeNotFound:     "Not Found",
	CodeTooMany:      "Too Many Requests",
	CodeServerError:  "Internal Server Error",
	CodeUnavailable:  "Service Unavailable",
	CodeTimeout:      "Gateway Timeout",
}

// StatusOf 错误类别 -> HTTP 状态码
func StatusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return CodeBadRequest
	case apperr.KindUnauthorized:
		return CodeUnauthorized
	case apperr.KindForbidden:
		return CodeForbidden
	case apperr.KindNotFound:
		return CodeNotFound
	case apperr.KindTransient:
		return CodeUnavailable
	default:
		return CodeServerError
	}
}
