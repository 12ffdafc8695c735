package repo

import (
	"net/url"
	"sync"

	"team-directory/internal/domain"
	"team-directory/pkg/utils"
)

const avatarBase = "https://ui-avatars.com/api/"

// UserRepo 进程内的用户目录，按插入顺序保存。
// 每个方法在锁内一次完成，读写之间不会交错。
type UserRepo struct {
	mu     sync.RWMutex
	users  []domain.User
	issued map[string]struct{} // 发过的 id 永不复用
	newID  func() string
}

type RepoOption func(*UserRepo)

// WithIDGen 替换 id 生成器（测试用）
func WithIDGen(f func() string) RepoOption { return func(r *UserRepo) { r.newID = f } }

func NewUserRepo(seed []domain.User, opts ...RepoOption) *UserRepo {
	r := &UserRepo{
		users:  make([]domain.User, 0, len(seed)),
		issued: make(map[string]struct{}, len(seed)),
		newID:  func() string { return utils.NewPrefixedID("usr_", 12) },
	}
	for _, o := range opts {
		o(r)
	}
	for _, u := range seed {
		if u.Avatar == "" {
			u.Avatar = AvatarURL(u.Name)
		}
		r.users = append(r.users, u)
		r.issued[u.ID] = struct{}{}
	}
	return r
}

// AvatarURL 根据姓名生成头像地址
func AvatarURL(name string) string {
	return avatarBase + "?name=" + url.QueryEscape(name) + "&background=random"
}

func (r *UserRepo) FindByID(id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) All() ([]domain.User, error) {
	return r.filter(func(*domain.User) bool { return true }), nil
}

func (r *UserRepo) FilterByDepartment(department string) ([]domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.Department == department }), nil
}

func (r *UserRepo) FilterByRole(role string) ([]domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.Role == role }), nil
}

func (r *UserRepo) FilterByLocation(location string) ([]domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.Location == location }), nil
}

func (r *UserRepo) Active() ([]domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.Status == domain.StatusActive }), nil
}

func (r *UserRepo) Insert(in domain.NewUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.newID()
	for {
		if _, dup := r.issued[id]; !dup {
			break
		}
		id = r.newID()
	}
	r.issued[id] = struct{}{}

	u := domain.User{
		ID:         id,
		Name:       in.Name,
		Email:      in.Email,
		Username:   in.Username,
		Role:       in.Role,
		Avatar:     AvatarURL(in.Name),
		Department: in.Department,
		Location:   in.Location,
		Bio:        in.Bio,
		JoinDate:   in.JoinDate,
		Status:     in.Status,
	}
	r.users = append(r.users, u)
	return &u, nil
}

// Update 原地合并；找不到返回 (nil, nil)
func (r *UserRepo) Update(id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			patch.Apply(&r.users[i])
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

// filter 返回副本，保持插入顺序
func (r *UserRepo) filter(keep func(*domain.User) bool) []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(r.users))
	for i := range r.users {
		if keep(&r.users[i]) {
			out = append(out, r.users[i])
		}
	}
	return out
}
