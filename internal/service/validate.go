package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"team-directory/internal/core/apperr"
	"team-directory/internal/domain"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	// username 可选；非空时至少 3 位，仅字母数字下划线
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || (len(s) >= 3 && usernameRe.MatchString(s))
	})
	return v
}

type field struct {
	label string
	value string
}

func requireFields(fs ...field) error {
	for _, f := range fs {
		if strings.TrimSpace(f.value) == "" {
			return apperr.Validation(f.label + " is required")
		}
	}
	return nil
}

type optField struct {
	label string
	value *string
}

// 更新时必填字段可以不传，但不能传空串
func forbidBlank(fs ...optField) error {
	for _, f := range fs {
		if f.value != nil && strings.TrimSpace(*f.value) == "" {
			return apperr.Validation(f.label + " cannot be empty")
		}
	}
	return nil
}

func (s *UserService) checkNewUser(in domain.NewUser) error {
	if err := requireFields(
		field{"Name", in.Name},
		field{"Email", in.Email},
		field{"Role", in.Role},
		field{"Department", in.Department},
		field{"Location", in.Location},
	); err != nil {
		return err
	}
	if err := s.validate.Struct(in); err != nil {
		return describe(err)
	}
	return s.checkJoinDate(in.JoinDate)
}

func (s *UserService) checkPatch(p domain.UserPatch) error {
	if err := forbidBlank(
		optField{"Name", p.Name},
		optField{"Email", p.Email},
		optField{"Role", p.Role},
		optField{"Department", p.Department},
		optField{"Location", p.Location},
		optField{"Join date", p.JoinDate},
	); err != nil {
		return err
	}
	if err := s.validate.Struct(p); err != nil {
		return describe(err)
	}
	if p.JoinDate != nil {
		return s.checkJoinDate(*p.JoinDate)
	}
	return nil
}

func (s *UserService) checkJoinDate(v string) error {
	if v == "" {
		return nil
	}
	d, err := time.Parse(domain.DateLayout, v)
	if err != nil {
		return apperr.Validation("Invalid date format")
	}
	if d.After(s.today()) {
		return apperr.Validation("Join date cannot be in the future")
	}
	return nil
}

func (s *UserService) today() time.Time {
	now := s.clock.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// describe 把 validator 的错误翻译成可读消息，只报第一个
func describe(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return apperr.Validation(err.Error())
	}
	fe := ves[0]
	switch fe.Tag() {
	case "email":
		return apperr.Validation("Invalid email format")
	case "username":
		return apperr.Validation("Username must be at least 3 characters and contain only letters, numbers, and underscores")
	case "max":
		return apperr.Validation(fmt.Sprintf("%s must be %s characters or less", fe.Field(), fe.Param()))
	case "oneof":
		return apperr.Validation(fmt.Sprintf(`%s must be either "active" or "inactive"`, fe.Field()))
	}
	return apperr.Validation(fe.Field() + " is invalid")
}
