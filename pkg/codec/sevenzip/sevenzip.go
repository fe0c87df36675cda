package sevenzip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"ztools/pkg/codec/tarball"

	"github.com/bodgit/sevenzip"
)

// DefaultBinary 是默认调用的 7-Zip 可执行文件
const DefaultBinary = "7z"

// ErrBinaryNotFound 表示 PATH 里找不到 7z
var ErrBinaryNotFound = errors.New("7z binary not found")

// Archiver 实现 codec.BlockArchiver
// 压缩：交给外部 7z 进程 (Go 生态没有成熟的 7z 写入实现)
// 解压：纯 Go，使用 bodgit/sevenzip
type Archiver struct {
	binary string
}

func NewArchiver(binary string) *Archiver {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Archiver{binary: binary}
}

// Available 检查 7z 可执行文件是否存在
func (a *Archiver) Available() bool {
	_, err := exec.LookPath(a.binary)
	return err == nil
}

// CompressPath 把文件或目录打包成 dst
// 目录遍历、符号链接、权限完全由 7z 自己处理
func (a *Archiver) CompressPath(ctx context.Context, src, dst string) error {
	bin, err := exec.LookPath(a.binary)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBinaryNotFound, a.binary)
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return err
	}

	// 7z 的 "a" 对已存在的归档是追加更新，而不是覆盖
	// 这里先删掉旧文件，保证“重复压缩 = 覆盖”
	if err := os.Remove(absDst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace existing archive: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "a", "-t7z", "-y", "-bd", absDst, absSrc)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return fmt.Errorf("7z a failed: %w", err)
		}
		return fmt.Errorf("7z a failed: %w: %s", err, detail)
	}
	return nil
}

// DecompressPath 把 src 完整解到 dstDir
// 写入全部经过 os.Root，条目不能借符号链接逃出 dstDir
func (a *Archiver) DecompressPath(ctx context.Context, src, dstDir string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	root, err := os.OpenRoot(dstDir)
	if err != nil {
		return err
	}
	defer root.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractFile(root, f); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(root *os.Root, f *sevenzip.File) error {
	name, err := tarball.CleanName(f.Name)
	if err != nil {
		return err
	}
	if name == "." {
		return nil
	}

	info := f.FileInfo()
	if info.IsDir() {
		return root.MkdirAll(name, 0755)
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if info.Mode()&fs.ModeSymlink != 0 {
		// 7z 把链接目标作为条目内容保存
		data, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		return tarball.Symlink(root, string(data), name)
	}

	if err := tarball.MkdirParent(root, name); err != nil {
		return err
	}
	perm := info.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	out, err := root.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if !f.Modified.IsZero() {
		return root.Chtimes(name, f.Modified, f.Modified)
	}
	return nil
}
