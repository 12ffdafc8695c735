package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(s string) *string { return &s }

func TestUserPatch(t *testing.T) {
	assert.True(t, UserPatch{}.IsEmpty())

	u := User{ID: "usr_1", Name: "Sarah Johnson", Role: "Engineering Manager", Location: "San Francisco", Avatar: "a"}
	p := UserPatch{Role: ptr("Senior Engineering Manager"), Location: ptr("Austin")}
	assert.False(t, p.IsEmpty())

	p.Apply(&u)
	assert.Equal(t, "Senior Engineering Manager", u.Role)
	assert.Equal(t, "Austin", u.Location)
	assert.Equal(t, "Sarah Johnson", u.Name)
	assert.Equal(t, "usr_1", u.ID)
	assert.Equal(t, "a", u.Avatar)
}
