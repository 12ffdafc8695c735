package apperr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

// Kind 错误类别，由抛出方显式标注
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindTransient
	KindUnauthorized
	KindForbidden
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

const fallbackMessage = "An unexpected error occurred. Please try again."

// Error 带类别标签的统一错误对象
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) error   { return &Error{Kind: KindValidation, Msg: msg} }
func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &Error{Kind: KindForbidden, Msg: msg} }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Transient(msg string, err error) error {
	return &Error{Kind: KindTransient, Msg: msg, Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// 无标签错误按消息关键字判定是否可重试
var retryKeywords = []string{"network", "fetch", "connection", "timeout", "offline"}

var (
	authKeywords       = []string{"auth", "unauthorized", "forbidden"}
	validationKeywords = []string{"validation", "invalid", "required"}
)

// IsRetryable 判断错误是否为瞬时（网络类）失败。
// 显式标签优先；只有未标注的错误才看传输层特征和消息内容。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindUnknown {
		return ae.Kind == KindTransient
	}
	if isTransportFailure(err) {
		return true
	}
	return containsAny(err.Error(), retryKeywords)
}

// KindOf 返回错误类别；未标注时按消息推断
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ae *Error
	if errors.As(err, &ae) && ae.Kind != KindUnknown {
		return ae.Kind
	}
	if IsRetryable(err) {
		return KindTransient
	}
	msg := err.Error()
	switch {
	case containsAny(msg, authKeywords):
		return KindUnauthorized
	case containsAny(msg, validationKeywords):
		return KindValidation
	}
	return KindUnknown
}

// Message 面向调用方的可读消息
func Message(err error) string {
	if err == nil {
		return fallbackMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallbackMessage
}

func isTransportFailure(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	var tmp interface{ Temporary() bool }
	if errors.As(err, &tmp) && tmp.Temporary() {
		return true
	}
	var to interface{ Timeout() bool }
	if errors.As(err, &to) && to.Timeout() {
		return true
	}
	return false
}

func containsAny(s string, keys []string) bool {
	s = strings.ToLower(s)
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
