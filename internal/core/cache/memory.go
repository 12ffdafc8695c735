package cache

import (
	"context"
	"sync"
	"time"

	"team-directory/internal/core/clock"
)

// MemoryRevoker 未配置 redis 时使用，进程重启即丢失
type MemoryRevoker struct {
	mu    sync.Mutex
	clock clock.Clock
	until map[string]time.Time
}

func NewMemory(c clock.Clock) *MemoryRevoker {
	if c == nil {
		c = clock.Real{}
	}
	return &MemoryRevoker{clock: c, until: make(map[string]time.Time)}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gc()
	m.until[jti] = m.clock.Now().Add(ttl)
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.until[jti]
	if !ok {
		return false, nil
	}
	if !m.clock.Now().Before(exp) {
		delete(m.until, jti)
		return false, nil
	}
	return true, nil
}

func (m *MemoryRevoker) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.until)
}

// gc 清理过期条目，调用方持锁
func (m *MemoryRevoker) gc() {
	now := m.clock.Now()
	for k, exp := range m.until {
		if !now.Before(exp) {
			delete(m.until, k)
		}
	}
}
