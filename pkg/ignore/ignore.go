package ignore

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultFileName 是目录内的排除规则文件
const DefaultFileName = ".ztignore"

// Matcher 封装了排除逻辑
// 它负责判断打包目录时某个条目是否应该被跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化排除匹配器
// rootPath: 被打包的目录（用于查找规则文件）
// fileName: 规则文件名，空串表示使用 DefaultFileName
// extra: 配置里追加的规则 (gitignore 语法)
func NewMatcher(rootPath, fileName string, extra ...string) (*Matcher, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}

	var rules []string
	for _, line := range extra {
		if strings.TrimSpace(line) != "" {
			rules = append(rules, line)
		}
	}

	var ignorer *gitignore.GitIgnore
	var err error

	// 1. 检查目录里是否有规则文件
	ignoreFilePath := filepath.Join(rootPath, fileName)

	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		// 情况 A: 用户定义了规则文件，文件内容和配置规则合并编译
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, rules...)
	} else if len(rules) > 0 {
		// 情况 B: 只有配置规则
		ignorer = gitignore.CompileIgnoreLines(rules...)
	}
	// 情况 C: 什么都没有，ignorer 保持 nil，不排除任何东西

	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Empty 表示没有任何规则
func (m *Matcher) Empty() bool {
	return m == nil || m.ignorer == nil
}

// Matches 检查给定的路径是否匹配排除规则
// path: 相对于被打包目录的路径 (例如 "data/model.bin")
// 返回: true 表示应该排除 (Skip), false 表示应该保留 (Keep)
func (m *Matcher) Matches(path string) bool {
	if m.Empty() {
		return false
	}
	return m.ignorer.MatchesPath(filepath.ToSlash(path))
}

// Skip 适配 tar 打包时的回调签名
// 目录额外用带尾部斜杠的形式再匹配一次，让 "build/" 这种规则生效
func (m *Matcher) Skip(rel string, isDir bool) bool {
	if m.Matches(rel) {
		return true
	}
	return isDir && m.Matches(rel+"/")
}
