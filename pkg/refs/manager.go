// Package refs 给仓库里的清单起名字 (tag)，名字存在本地目录里，一个 ref 一个文件。
package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ztools/pkg/types"
)

// Latest 在每次 push 之后自动指向最新的清单
const Latest = "LATEST"

var (
	ErrRefNotFound = errors.New("ref not found")
	ErrInvalidName = errors.New("invalid ref name")
)

// Manager 管理 <root>/<name> 形式的引用文件
type Manager struct {
	rootPath string
}

func NewManager(rootPath string) *Manager {
	return &Manager{rootPath: rootPath}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.rootPath, name)
}

// Get 读取名字指向的清单 Hash
func (m *Manager) Get(name string) (types.Hash, error) {
	if err := validate(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(m.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrRefNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ref %s: %w", name, err)
	}

	// 手工编辑时可能带换行
	h := types.Hash(strings.TrimSpace(string(data)))
	if !h.IsValid() {
		return "", fmt.Errorf("ref %s is corrupted: %q", name, h)
	}
	return h, nil
}

// Update 原子地把名字指向 hash (临时文件 + Rename)
func (m *Manager) Update(name string, hash types.Hash) error {
	if err := validate(name); err != nil {
		return err
	}
	if !hash.IsValid() {
		return fmt.Errorf("refusing to point %s at invalid hash %q", name, hash)
	}
	if err := os.MkdirAll(m.rootPath, 0755); err != nil {
		return fmt.Errorf("failed to create refs dir: %w", err)
	}

	tmp, err := os.CreateTemp(m.rootPath, ".ref-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(string(hash) + "\n"); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), m.path(name))
}

// List 返回所有名字，按字母序
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.rootPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// validate 名字只能是单个路径段，且不能以点开头
func validate(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
