// Package scripts 运行用户脚本目录下的 shell 脚本。
package scripts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"ztools/pkg/naming"
)

var (
	ErrDirectoryNotFound    = errors.New("scripts directory does not exist")
	ErrScriptNotFound       = errors.New("script does not exist")
	ErrUnsupportedExtension = errors.New("unsupported script extension")
	ErrInvalidName          = errors.New("invalid script name")
)

// ScriptExt 是唯一允许的脚本扩展名
const ScriptExt = "sh"

// Stdio 是子进程继承的标准流；nil 字段使用当前进程的
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// ExitError 表示脚本跑起来了但以非零状态退出
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("script '%s' exited with status %d", e.Name, e.Code)
}

// Resolve 把脚本名解析成脚本目录下的路径
// 没有扩展名补 .sh，其他扩展名一律拒绝
// 名字只能是脚本目录下的单个文件名
func Resolve(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (create it or set scripts.directory)", ErrDirectoryNotFound, dir)
		}
		return "", fmt.Errorf("failed to inspect scripts directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	switch ext := naming.Ext(filepath.Base(path)); ext {
	case "":
		path += "." + ScriptExt
	case ScriptExt:
	default:
		return "", fmt.Errorf("%w: cannot run scripts with [%s] as extension", ErrUnsupportedExtension, ext)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s in %s", ErrScriptNotFound, name, dir)
		}
		return "", fmt.Errorf("failed to inspect script %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrScriptNotFound, path)
	}
	return path, nil
}

// Run 解析脚本、补上可执行位、启动并等待结束
func Run(ctx context.Context, dir, name string, args []string, stdio Stdio) error {
	// 1. 定位脚本
	path, err := Resolve(dir, name)
	if err != nil {
		return err
	}

	// 2. 可执行位 (Windows 没有这个概念)
	if runtime.GOOS != "windows" {
		if err := makeExecutable(path); err != nil {
			return err
		}
	}

	// 3. 启动并等待
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if stdio.In != nil {
		cmd.Stdin = stdio.In
	}
	if stdio.Out != nil {
		cmd.Stdout = stdio.Out
	}
	if stdio.Err != nil {
		cmd.Stderr = stdio.Err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("cannot spawn process for '%s': %w", path, err)
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Name: name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed waiting for '%s': %w", path, err)
	}
	return nil
}

func makeExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot view permissions of [%s]: %w", path, err)
	}
	mode := info.Mode().Perm()
	if mode&0o111 == 0o111 {
		return nil
	}
	if err := os.Chmod(path, mode|0o111); err != nil {
		return fmt.Errorf("cannot change permissions of [%s]: %w", path, err)
	}
	return nil
}
