package user

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"team-directory/internal/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

// LoadSeed 读取初始目录数据；path 为空时使用内置的 25 人样例
func LoadSeed(path string) ([]domain.User, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		raw = b
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]domain.User, error) {
	var users []domain.User
	if err := yaml.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	seen := make(map[string]struct{}, len(users))
	for i, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("seed entry %d: missing id", i)
		}
		if _, dup := seen[u.ID]; dup {
			return nil, fmt.Errorf("seed entry %d: duplicate id %q", i, u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return users, nil
}
