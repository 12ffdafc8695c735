package user

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedDefault(t *testing.T) {
	users, err := LoadSeed("")
	require.NoError(t, err)
	require.Len(t, users, 25)

	assert.Equal(t, "usr_1a2b3c4d5e6f", users[0].ID)
	assert.Equal(t, "Sarah Johnson", users[0].Name)
	assert.Equal(t, "Engineering", users[0].Department)

	for _, u := range users {
		assert.NotEmpty(t, u.Email)
		assert.Contains(t, []string{"active", "inactive"}, u.Status)
		assert.LessOrEqual(t, len(u.Bio), 500)
	}
}

func TestLoadSeedFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte("- id: usr_x\n  name: X Y\n"), 0o600))

	users, err := LoadSeed(p)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "X Y", users[0].Name)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseSeedRejectsBadIDs(t *testing.T) {
	_, err := ParseSeed([]byte("- name: no id\n"))
	assert.ErrorContains(t, err, "missing id")

	_, err = ParseSeed([]byte("- id: a\n- id: a\n"))
	assert.ErrorContains(t, err, "duplicate id")
}
