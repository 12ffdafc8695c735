package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrefixedID(t *testing.T) {
	re := regexp.MustCompile(`^usr_[0-9a-f]{12}$`)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id := NewPrefixedID("usr_", 12)
		assert.Regexp(t, re, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
	assert.Len(t, NewID(), 32)
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.True(t, CheckPassword("admin123", h))
	assert.False(t, CheckPassword("admin124", h))
}
