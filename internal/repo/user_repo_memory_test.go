package repo

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"team-directory/internal/core/apperr"
	"team-directory/internal/domain"
)

func seedUsers() []domain.User {
	return []domain.User{
		{ID: "usr_a", Name: "Sarah Johnson", Department: "Engineering", Role: "Engineering Manager", Location: "San Francisco", Status: "active"},
		{ID: "usr_b", Name: "Emily Rodriguez", Department: "Design", Role: "Product Designer", Location: "London", Status: "active"},
		{ID: "usr_c", Name: "Michael Chen", Department: "Engineering", Role: "Full Stack Developer", Location: "New York", Status: "inactive"},
		{ID: "usr_d", Name: "David Kim", Department: "Engineering", Role: "Frontend Developer", Location: "London", Status: "active"},
	}
}

func ptr(s string) *string { return &s }

func TestFindByID(t *testing.T) {
	r := NewUserRepo(seedUsers())

	u, err := r.FindByID("usr_b")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Emily Rodriguez", u.Name)
	assert.Equal(t, AvatarURL("Emily Rodriguez"), u.Avatar)

	miss, err := r.FindByID("usr_zzz")
	assert.NoError(t, err)
	assert.Nil(t, miss)
}

func TestFindByIDReturnsCopy(t *testing.T) {
	r := NewUserRepo(seedUsers())
	u, _ := r.FindByID("usr_a")
	u.Name = "mutated"

	again, _ := r.FindByID("usr_a")
	assert.Equal(t, "Sarah Johnson", again.Name)
}

func TestFiltersPreserveOrder(t *testing.T) {
	r := NewUserRepo(seedUsers())

	eng, _ := r.FilterByDepartment("Engineering")
	assert.Equal(t, []string{"usr_a", "usr_c", "usr_d"}, ids(eng))

	none, _ := r.FilterByDepartment("engineering")
	assert.NotNil(t, none)
	assert.Empty(t, none)

	london, _ := r.FilterByLocation("London")
	assert.Equal(t, []string{"usr_b", "usr_d"}, ids(london))

	fe, _ := r.FilterByRole("Frontend Developer")
	assert.Equal(t, []string{"usr_d"}, ids(fe))

	active, _ := r.Active()
	assert.Equal(t, []string{"usr_a", "usr_b", "usr_d"}, ids(active))

	all, _ := r.All()
	assert.Len(t, all, 4)
}

func TestInsert(t *testing.T) {
	r := NewUserRepo(seedUsers())

	u, err := r.Insert(domain.NewUser{Name: "John Doe", Email: "john.doe@company.com", Role: "Dev", Department: "Engineering", Location: "Austin"})
	require.NoError(t, err)
	assert.Regexp(t, `^usr_[0-9a-f]{12}$`, u.ID)
	assert.Equal(t, "https://ui-avatars.com/api/?name=John+Doe&background=random", u.Avatar)

	all, _ := r.All()
	require.Len(t, all, 5)
	assert.Equal(t, u.ID, all[4].ID)
}

func TestInsertNeverReusesIDs(t *testing.T) {
	seq := []string{"usr_a", "usr_c", "usr_new1", "usr_new1", "usr_new2"}
	i := 0
	r := NewUserRepo(seedUsers(), WithIDGen(func() string {
		id := seq[i]
		i++
		return id
	}))

	first, _ := r.Insert(domain.NewUser{Name: "One"})
	second, _ := r.Insert(domain.NewUser{Name: "Two"})

	assert.Equal(t, "usr_new1", first.ID)
	assert.Equal(t, "usr_new2", second.ID)
}

func TestInsertDuplicatesAllowed(t *testing.T) {
	r := NewUserRepo(nil)
	a, _ := r.Insert(domain.NewUser{Name: "Same", Email: "same@company.com"})
	b, _ := r.Insert(domain.NewUser{Name: "Same", Email: "same@company.com"})
	assert.NotEqual(t, a.ID, b.ID)
}

func TestUpdate(t *testing.T) {
	r := NewUserRepo(seedUsers())
	before, _ := r.FindByID("usr_a")

	u, err := r.Update("usr_a", domain.UserPatch{Role: ptr("Senior Engineering Manager"), Location: ptr("Austin")})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Senior Engineering Manager", u.Role)
	assert.Equal(t, "Austin", u.Location)
	assert.Equal(t, before.Name, u.Name)
	assert.Equal(t, before.ID, u.ID)
	assert.Equal(t, before.Avatar, u.Avatar)

	stored, _ := r.FindByID("usr_a")
	assert.Equal(t, *u, *stored)

	miss, err := r.Update("usr_nope", domain.UserPatch{Role: ptr("X")})
	assert.NoError(t, err)
	assert.Nil(t, miss)
}

func TestConcurrentInsertAndRead(t *testing.T) {
	r := NewUserRepo(seedUsers())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = r.Insert(domain.NewUser{Name: fmt.Sprintf("user %d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.All()
		}()
	}
	wg.Wait()

	all, _ := r.All()
	assert.Len(t, all, 54)
}

func TestFlakyRepo(t *testing.T) {
	base := NewUserRepo(seedUsers())

	always := NewFlakyRepo(base, 1, func() float64 { return 0.5 })
	_, err := always.FindByID("usr_a")
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))

	_, err = always.Insert(domain.NewUser{Name: "x"})
	require.Error(t, err)
	all, _ := base.All()
	assert.Len(t, all, 4)

	never := NewFlakyRepo(base, 0, func() float64 { return 0 })
	u, err := never.FindByID("usr_a")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", u.Name)
}

func ids(us []domain.User) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.ID)
	}
	return out
}
