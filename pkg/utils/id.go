package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewID 32 位十六进制，无连字符
func NewID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

// NewPrefixedID 形如 usr_1a2b3c4d5e6f：前缀 + n 位十六进制
func NewPrefixedID(prefix string, n int) string {
	id := NewID()
	if n > 0 && n < len(id) {
		id = id[:n]
	}
	return prefix + id
}
