package auth

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"team-directory/internal/core/apperr"
	"team-directory/internal/core/clock"
	"team-directory/pkg/utils"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// loginDelay 模拟登录时的网络往返
const loginDelay = 500 * time.Millisecond

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Credential 一条账号记录，密码以 bcrypt 哈希保存
type Credential struct {
	Username     string
	PasswordHash string
	Role         string
}

type AuthUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Revoker 保存已注销令牌的 jti，直到令牌自然过期
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// DefaultCredentials 内置的两个演示账号
func DefaultCredentials() ([]Credential, error) {
	plain := []struct{ user, pass, role string }{
		{"admin", "admin123", RoleAdmin},
		{"user", "user123", RoleUser},
	}
	out := make([]Credential, 0, len(plain))
	for _, p := range plain {
		h, err := utils.HashPassword(p.pass)
		if err != nil {
			return nil, err
		}
		out = append(out, Credential{Username: p.user, PasswordHash: h, Role: p.role})
	}
	return out, nil
}

// Sessions 会话提供者：登录、注销、解析当前用户
type Sessions struct {
	jwt     *JWTer
	creds   map[string]Credential
	revoker Revoker
	clock   clock.Clock
	log     *zap.Logger
	delay   time.Duration
}

type SessionOption func(*Sessions)

func WithSessionClock(c clock.Clock) SessionOption  { return func(s *Sessions) { s.clock = c } }
func WithSessionLogger(l *zap.Logger) SessionOption { return func(s *Sessions) { s.log = l } }
func WithLoginDelay(d time.Duration) SessionOption  { return func(s *Sessions) { s.delay = d } }

func NewSessions(j *JWTer, creds []Credential, rv Revoker, opts ...SessionOption) *Sessions {
	s := &Sessions{
		jwt:     j,
		creds:   make(map[string]Credential, len(creds)),
		revoker: rv,
		delay:   loginDelay,
	}
	for _, c := range creds {
		s.creds[c.Username] = c
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
	if j.Now == nil {
		j.Now = s.clock.Now
	}
	return s
}

func (s *Sessions) Login(ctx context.Context, in Credentials) (*AuthUser, *Token, error) {
	if err := s.clock.Sleep(ctx, s.delay); err != nil {
		return nil, nil, err
	}
	c, ok := s.creds[in.Username]
	if !ok || !utils.CheckPassword(in.Password, c.PasswordHash) {
		return nil, nil, apperr.Unauthorized("Invalid username or password")
	}
	tok, claims, err := s.jwt.Issue(c.Username, c.Role)
	if err != nil {
		return nil, nil, apperr.Internal("issue token", err)
	}
	s.log.Info("login", zap.String("username", c.Username), zap.String("role", c.Role))
	return &AuthUser{Username: c.Username, Role: c.Role}, &Token{Token: tok, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout 吊销令牌；已失效的令牌直接视为成功
func (s *Sessions) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return apperr.Transient("revoke token", err)
	}
	return nil
}

// AuthenticatedUser 令牌无效、过期或已注销时返回 nil
func (s *Sessions) AuthenticatedUser(ctx context.Context, token string) *AuthUser {
	claims := s.claims(ctx, token)
	if claims == nil {
		return nil
	}
	return &AuthUser{Username: claims.Username, Role: claims.Role}
}

func (s *Sessions) claims(ctx context.Context, token string) *Claims {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil
	}
	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		// 存储不可用时按未登录处理
		s.log.Warn("revocation lookup failed", zap.Error(err))
		return nil
	}
	if revoked {
		return nil
	}
	return claims
}
