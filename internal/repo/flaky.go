package repo

import (
	"syscall"

	"team-directory/internal/core/apperr"
	"team-directory/internal/domain"
)

// FlakyRepo 按比例注入瞬时故障，模拟不稳定的网络
type FlakyRepo struct {
	next domain.UserRepository
	rate float64
	rand func() float64
}

// NewFlakyRepo rate 取值 [0,1]；rand 返回 [0,1) 的随机数
func NewFlakyRepo(next domain.UserRepository, rate float64, rand func() float64) *FlakyRepo {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	return &FlakyRepo{next: next, rate: rate, rand: rand}
}

func (f *FlakyRepo) fault() error {
	if f.rate > 0 && f.rand() < f.rate {
		return apperr.Transient("network error: connection reset (simulated)", syscall.ECONNRESET)
	}
	return nil
}

func (f *FlakyRepo) FindByID(id string) (*domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.FindByID(id)
}

func (f *FlakyRepo) All() ([]domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.All()
}

func (f *FlakyRepo) FilterByDepartment(department string) ([]domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.FilterByDepartment(department)
}

func (f *FlakyRepo) FilterByRole(role string) ([]domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.FilterByRole(role)
}

func (f *FlakyRepo) FilterByLocation(location string) ([]domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.FilterByLocation(location)
}

func (f *FlakyRepo) Active() ([]domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.Active()
}

// 写操作在落库前失败，不会产生半写入
func (f *FlakyRepo) Insert(in domain.NewUser) (*domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.Insert(in)
}

func (f *FlakyRepo) Update(id string, patch domain.UserPatch) (*domain.User, error) {
	if err := f.fault(); err != nil {
		return nil, err
	}
	return f.next.Update(id, patch)
}
