package service

import (
	"context"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"team-directory/internal/core/apperr"
	"team-directory/internal/core/clock"
	"team-directory/internal/core/retry"
	"team-directory/internal/domain"
)

// Latency 每次访问存储前注入的模拟延迟，[Min, Max] 均匀分布
type Latency struct {
	Min time.Duration
	Max time.Duration
}

func DefaultLatency() Latency { return Latency{Min: 500 * time.Millisecond, Max: time.Second} }

type PageParams struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"pageSize,default=10"`
}

func DefaultPageParams() PageParams { return PageParams{Page: 1, PageSize: 10} }

type SearchOptions struct {
	CaseSensitive bool
}

// UserService 目录请求层：校验 -> 重试(延迟 + 存储访问) -> 统一响应
type UserService struct {
	repo     domain.UserRepository
	retry    *retry.Executor
	clock    clock.Clock
	latency  Latency
	randN    func(n int64) int64
	log      *zap.Logger
	validate *validator.Validate
}

type Option func(*UserService)

func WithClock(c clock.Clock) Option        { return func(s *UserService) { s.clock = c } }
func WithLatency(l Latency) Option          { return func(s *UserService) { s.latency = l } }
func WithLogger(l *zap.Logger) Option       { return func(s *UserService) { s.log = l } }
func WithRand(f func(n int64) int64) Option { return func(s *UserService) { s.randN = f } }

func NewUserService(repo domain.UserRepository, ex *retry.Executor, opts ...Option) *UserService {
	s := &UserService{
		repo:     repo,
		retry:    ex,
		latency:  DefaultLatency(),
		randN:    rand.Int63n,
		validate: newValidator(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.retry == nil {
		s.retry = retry.New(retry.WithClock(s.clock), retry.WithLogger(s.log))
	}
	return s
}

// GetAllUsers 按插入顺序分页；越界页返回空数组
func (s *UserService) GetAllUsers(ctx context.Context, p PageParams) UserPage {
	if p.Page < 1 {
		return UserPage{Envelope: s.fail(apperr.Validation("Page number must be 1 or greater"), "")}
	}
	if p.PageSize < 1 {
		return UserPage{Envelope: s.fail(apperr.Validation("Page size must be 1 or greater"), "")}
	}

	type page struct {
		items []domain.User
		meta  PaginationMetadata
	}
	out := retry.Do(ctx, s.retry, "get_all_users", func(ctx context.Context) (page, error) {
		if err := s.pause(ctx); err != nil {
			return page{}, err
		}
		all, err := s.repo.All()
		if err != nil {
			return page{}, err
		}
		meta := Paginate(len(all), p.Page, p.PageSize)
		return page{items: slice(all, p.Page, p.PageSize), meta: meta}, nil
	})
	if !out.Success {
		return UserPage{Envelope: s.fail(out.Err, "Failed to fetch users")}
	}
	return UserPage{
		Envelope:           Success(s.clock.Now(), out.Data.items),
		PaginationMetadata: &out.Data.meta,
	}
}

// slice 先按页数判断越界再相乘，page/pageSize 很大时也不会溢出
func slice(all []domain.User, page, size int) []domain.User {
	if page < 1 || size < 1 || page-1 >= pageCount(len(all), size) {
		return []domain.User{}
	}
	start := (page - 1) * size
	return all[start : start+min(size, len(all)-start)]
}

// GetUserByID 查不到属于确定性结果，直接终止，不重试
func (s *UserService) GetUserByID(ctx context.Context, id string) Envelope[domain.User] {
	if strings.TrimSpace(id) == "" {
		return failAs[domain.User](s, apperr.Validation("User ID is required"), "")
	}
	out := retry.Do(ctx, s.retry, "get_user_by_id", func(ctx context.Context) (domain.User, error) {
		if err := s.pause(ctx); err != nil {
			return domain.User{}, err
		}
		u, err := s.repo.FindByID(id)
		if err != nil {
			return domain.User{}, err
		}
		if u == nil {
			return domain.User{}, apperr.NotFound("User not found with ID: %s", id)
		}
		return *u, nil
	})
	if !out.Success {
		return failAs[domain.User](s, out.Err, "Failed to fetch user")
	}
	return Success(s.clock.Now(), out.Data)
}

// SearchUsers 在 name/email/role 上做子串匹配，任一命中即返回
func (s *UserService) SearchUsers(ctx context.Context, query string, opt SearchOptions) UserList {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return UserList{Envelope: s.fail(apperr.Validation("Search query is required"), "")}
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return UserList{Envelope: s.fail(apperr.Validation("Search query must be at least 2 characters long"), "")}
	}

	needle := query
	if !opt.CaseSensitive {
		needle = strings.ToLower(query)
	}
	fold := func(v string) string {
		if opt.CaseSensitive {
			return v
		}
		return strings.ToLower(v)
	}

	out := retry.Do(ctx, s.retry, "search_users", func(ctx context.Context) ([]domain.User, error) {
		if err := s.pause(ctx); err != nil {
			return nil, err
		}
		all, err := s.repo.All()
		if err != nil {
			return nil, err
		}
		hits := make([]domain.User, 0)
		for _, u := range all {
			if strings.Contains(fold(u.Name), needle) ||
				strings.Contains(fold(u.Email), needle) ||
				strings.Contains(fold(u.Role), needle) {
				hits = append(hits, u)
			}
		}
		return hits, nil
	})
	if !out.Success {
		return UserList{Envelope: s.fail(out.Err, "Failed to search users")}
	}
	return listOf(s.clock.Now(), out.Data)
}

func (s *UserService) GetUsersByDepartment(ctx context.Context, department string) UserList {
	return s.filtered(ctx, "get_users_by_department", department, "Department is required",
		"Failed to fetch users by department", s.repo.FilterByDepartment)
}

func (s *UserService) GetUsersByRole(ctx context.Context, role string) UserList {
	return s.filtered(ctx, "get_users_by_role", role, "Role is required",
		"Failed to fetch users by role", s.repo.FilterByRole)
}

func (s *UserService) GetUsersByLocation(ctx context.Context, location string) UserList {
	return s.filtered(ctx, "get_users_by_location", location, "Location is required",
		"Failed to fetch users by location", s.repo.FilterByLocation)
}

// filtered 精确匹配单个字段，空值在进入重试前拒绝
func (s *UserService) filtered(ctx context.Context, name, value, required, fallback string,
	find func(string) ([]domain.User, error)) UserList {
	if strings.TrimSpace(value) == "" {
		return UserList{Envelope: s.fail(apperr.Validation(required), "")}
	}
	out := retry.Do(ctx, s.retry, name, func(ctx context.Context) ([]domain.User, error) {
		if err := s.pause(ctx); err != nil {
			return nil, err
		}
		return find(value)
	})
	if !out.Success {
		return UserList{Envelope: s.fail(out.Err, fallback)}
	}
	return listOf(s.clock.Now(), nonNil(out.Data))
}

func (s *UserService) GetActiveUsers(ctx context.Context) UserList {
	out := retry.Do(ctx, s.retry, "get_active_users", func(ctx context.Context) ([]domain.User, error) {
		if err := s.pause(ctx); err != nil {
			return nil, err
		}
		return s.repo.Active()
	})
	if !out.Success {
		return UserList{Envelope: s.fail(out.Err, "Failed to fetch active users")}
	}
	return listOf(s.clock.Now(), nonNil(out.Data))
}

func (s *UserService) CreateUser(ctx context.Context, in domain.NewUser) Envelope[domain.User] {
	if err := s.checkNewUser(in); err != nil {
		return failAs[domain.User](s, err, "")
	}
	if in.Status == "" {
		in.Status = domain.StatusActive
	}
	if in.JoinDate == "" {
		in.JoinDate = s.today().Format(domain.DateLayout)
	}

	out := retry.Do(ctx, s.retry, "create_user", func(ctx context.Context) (domain.User, error) {
		if err := s.pause(ctx); err != nil {
			return domain.User{}, err
		}
		u, err := s.repo.Insert(in)
		if err != nil {
			return domain.User{}, err
		}
		return *u, nil
	})
	if !out.Success {
		return failAs[domain.User](s, out.Err, "Failed to create user")
	}
	s.log.Info("user created", zap.String("id", out.Data.ID), zap.Int("attempts", out.Attempts))
	return Success(s.clock.Now(), out.Data)
}

// UpdateUser 存储未命中转成 not found，同样不重试
func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) Envelope[domain.User] {
	if strings.TrimSpace(id) == "" {
		return failAs[domain.User](s, apperr.Validation("User ID is required"), "")
	}
	if patch.IsEmpty() {
		return failAs[domain.User](s, apperr.Validation("No updates provided"), "")
	}
	if err := s.checkPatch(patch); err != nil {
		return failAs[domain.User](s, err, "")
	}

	out := retry.Do(ctx, s.retry, "update_user", func(ctx context.Context) (domain.User, error) {
		if err := s.pause(ctx); err != nil {
			return domain.User{}, err
		}
		u, err := s.repo.Update(id, patch)
		if err != nil {
			return domain.User{}, err
		}
		if u == nil {
			return domain.User{}, apperr.NotFound("User not found with ID: %s", id)
		}
		return *u, nil
	})
	if !out.Success {
		return failAs[domain.User](s, out.Err, "Failed to update user")
	}
	s.log.Info("user updated", zap.String("id", id), zap.Int("attempts", out.Attempts))
	return Success(s.clock.Now(), out.Data)
}

// pause 模拟网络延迟
func (s *UserService) pause(ctx context.Context) error {
	d := s.latency.Min
	if spread := s.latency.Max - s.latency.Min; spread > 0 {
		d += time.Duration(s.randN(int64(spread) + 1))
	}
	if d <= 0 {
		return ctx.Err()
	}
	return s.clock.Sleep(ctx, d)
}

func (s *UserService) fail(err error, fallback string) Envelope[[]domain.User] {
	return failAs[[]domain.User](s, err, fallback)
}

func failAs[T any](s *UserService, err error, fallback string) Envelope[T] {
	return Failure[T](s.clock.Now(), err, fallback)
}

func nonNil(us []domain.User) []domain.User {
	if us == nil {
		return []domain.User{}
	}
	return us
}
