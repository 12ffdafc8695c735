package domain

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DateLayout joinDate 的格式（ISO 日期）
const DateLayout = "2006-01-02"

type User struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	Email      string `yaml:"email" json:"email"`
	Username   string `yaml:"username,omitempty" json:"username,omitempty"`
	Role       string `yaml:"role" json:"role"`
	Avatar     string `yaml:"avatar" json:"avatar"`
	Department string `yaml:"department" json:"department"`
	Location   string `yaml:"location" json:"location"`
	Bio        string `yaml:"bio" json:"bio"`
	JoinDate   string `yaml:"joinDate" json:"joinDate"`
	Status     string `yaml:"status" json:"status"` // "active"/"inactive"
}

// NewUser 创建时的入参：不含 id/avatar，由存储层生成
type NewUser struct {
	Name       string `json:"name"`
	Email      string `json:"email" validate:"omitempty,email"`
	Username   string `json:"username,omitempty" validate:"omitempty,username"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Bio        string `json:"bio" validate:"omitempty,max=500"`
	JoinDate   string `json:"joinDate"`
	Status     string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UserPatch 部分更新；nil 表示不修改。id/avatar 不在其中，因此不可变
type UserPatch struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Username   *string `json:"username,omitempty" validate:"omitempty,username"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Location   *string `json:"location,omitempty"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	JoinDate   *string `json:"joinDate,omitempty"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Username == nil && p.Role == nil &&
		p.Department == nil && p.Location == nil && p.Bio == nil && p.JoinDate == nil && p.Status == nil
}

// Apply 把提供的字段合并进 u
func (p UserPatch) Apply(u *User) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Name, p.Name)
	set(&u.Email, p.Email)
	set(&u.Username, p.Username)
	set(&u.Role, p.Role)
	set(&u.Department, p.Department)
	set(&u.Location, p.Location)
	set(&u.Bio, p.Bio)
	set(&u.JoinDate, p.JoinDate)
	set(&u.Status, p.Status)
}

// UserRepository 目录存储契约。查不到时返回 (nil, nil)
type UserRepository interface {
	FindByID(id string) (*User, error)
	All() ([]User, error)
	FilterByDepartment(department string) ([]User, error)
	FilterByRole(role string) ([]User, error)
	FilterByLocation(location string) ([]User, error)
	Active() ([]User, error)
	Insert(in NewUser) (*User, error)
	Update(id string, patch UserPatch) (*User, error)
}
