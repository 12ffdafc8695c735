package service

import (
	"strings"
	"time"

	"team-directory/internal/core/apperr"
	"team-directory/internal/domain"
)

// 与前端约定的 ISO 时间格式（毫秒精度，UTC）
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope 统一响应：success 为真时只有 data，有意义；否则只有 error
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	Data      *T     `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`

	kind apperr.Kind
}

func (e Envelope[T]) OK() bool             { return e.Success }
func (e Envelope[T]) ErrKind() apperr.Kind { return e.kind }

func Success[T any](now time.Time, data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: &data, Timestamp: stamp(now)}
}

// Failure 把错误收敛成 success=false 的响应；fallback 用于错误消息为空的情况
func Failure[T any](now time.Time, err error, fallback string) Envelope[T] {
	msg := fallback
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		msg = apperr.Message(err)
	}
	if msg == "" {
		msg = apperr.Message(nil)
	}
	return Envelope[T]{Success: false, Error: msg, Timestamp: stamp(now), kind: apperr.KindOf(err)}
}

func stamp(now time.Time) string { return now.UTC().Format(timestampLayout) }

type PaginationMetadata struct {
	TotalItems      int  `json:"totalUsers"`
	TotalPages      int  `json:"totalPages"`
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Paginate 计算分页信息；page 不做钳制
func Paginate(total, page, pageSize int) PaginationMetadata {
	pages := pageCount(total, pageSize)
	return PaginationMetadata{
		TotalItems:      total,
		TotalPages:      pages,
		CurrentPage:     page,
		PageSize:        pageSize,
		HasNextPage:     page < pages,
		HasPreviousPage: page > 1,
	}
}

// pageCount 即 ceil(total/pageSize)，不做 total+pageSize-1 以免溢出
func pageCount(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	n := total / pageSize
	if total%pageSize != 0 {
		n++
	}
	return n
}

// UserPage 列表响应，失败时不带分页字段
type UserPage struct {
	Envelope[[]domain.User]
	*PaginationMetadata
}

// UserList 检索/过滤响应，附带 resultCount
type UserList struct {
	Envelope[[]domain.User]
	ResultCount *int `json:"resultCount,omitempty"`
}

func listOf(now time.Time, users []domain.User) UserList {
	n := len(users)
	return UserList{Envelope: Success(now, users), ResultCount: &n}
}
