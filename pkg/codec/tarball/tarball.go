package tarball

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafePath 表示 tar 条目试图写到输出目录之外 (zip-slip)
var ErrUnsafePath = errors.New("tar entry escapes output directory")

// SkipFunc 返回 true 表示跳过该条目
// rel 是相对于被打包目录的 slash 路径 (例如 "logs/a.log")
type SkipFunc func(rel string, isDir bool) bool

// ExcludeLoader 为被打包的目录加载排除规则，返回 nil 表示不排除任何东西
type ExcludeLoader func(dir string) (SkipFunc, error)

// Builder 把目录树写成 tar 流
type Builder struct {
	exclude ExcludeLoader
}

func NewBuilder(exclude ExcludeLoader) *Builder {
	return &Builder{exclude: exclude}
}

// Build 把 dir 整棵树以 entryName 作为顶层条目写进 w
// omit 里的文件 (通常是正在写的输出归档本身) 不会被打包
// 只写 tar 本身，不负责关闭 w
func (b *Builder) Build(w io.Writer, dir, entryName string, omit ...string) error {
	var skip SkipFunc
	if b.exclude != nil {
		var err error
		if skip, err = b.exclude(dir); err != nil {
			return fmt.Errorf("failed to load exclude rules: %w", err)
		}
	}

	// 按 inode 比较，不受符号链接或相对路径写法影响
	var omitted []os.FileInfo
	for _, p := range omit {
		if info, err := os.Stat(p); err == nil {
			omitted = append(omitted, info)
		}
	}

	tw := tar.NewWriter(w)

	walkFn := func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err // 权限错误等
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		name := entryName
		if rel != "." {
			if skip != nil && skip(rel, d.IsDir()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if isOmitted(d, omitted) {
				return nil
			}
			name = path.Join(entryName, rel)
		}

		return writeEntry(tw, p, name, d)
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return fmt.Errorf("failed to build tar from %s: %w", dir, err)
	}
	return tw.Close()
}

func isOmitted(d fs.DirEntry, omitted []os.FileInfo) bool {
	if len(omitted) == 0 || !d.Type().IsRegular() {
		return false
	}
	info, err := d.Info()
	if err != nil {
		return false
	}
	for _, o := range omitted {
		if os.SameFile(info, o) {
			return true
		}
	}
	return false
}

func writeEntry(tw *tar.Writer, p, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		// 符号链接按链接本身打包，不跟随
		if link, err = os.Readlink(p); err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("unsupported file %s: %w", p, err)
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("failed to write %s into tar: %w", p, err)
	}
	return nil
}

// Reader 把 tar 文件解到目录
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// Unpack 把磁盘上的 archivePath 完整解到 outDir
func (r *Reader) Unpack(archivePath, outDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	return Extract(f, outDir)
}

// Extract 从 tar 流解包到 outDir
// 所有写入都经过 os.Root，穿过符号链接逃出 outDir 的路径会被拒绝
func Extract(src io.Reader, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	root, err := os.OpenRoot(outDir)
	if err != nil {
		return err
	}
	defer root.Close()

	tr := tar.NewReader(src)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("corrupted tar stream: %w", err)
		}

		name, err := CleanName(hdr.Name)
		if err != nil {
			return err
		}
		if name == "." {
			continue
		}

		if err := extractEntry(root, tr, hdr, name); err != nil {
			return fmt.Errorf("failed to extract %s: %w", hdr.Name, err)
		}
	}
}

func extractEntry(root *os.Root, tr *tar.Reader, hdr *tar.Header, name string) error {
	mode := hdr.FileInfo().Mode()

	switch hdr.Typeflag {
	case tar.TypeDir:
		// 目录至少要可写，否则后面的子文件写不进去
		return root.MkdirAll(name, mode.Perm()|0700)

	case tar.TypeReg:
		if err := MkdirParent(root, name); err != nil {
			return err
		}
		out, err := root.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		return root.Chtimes(name, hdr.ModTime, hdr.ModTime)

	case tar.TypeSymlink:
		return Symlink(root, hdr.Linkname, name)

	case tar.TypeLink:
		source, err := CleanName(hdr.Linkname)
		if err != nil {
			return err
		}
		if err := MkdirParent(root, name); err != nil {
			return err
		}
		_ = root.Remove(name)
		return root.Link(source, name)

	default:
		// 设备文件、FIFO 等直接跳过
		return nil
	}
}

// Symlink 在 root 内创建 name -> link
// 链接目标按字面解析也不能落到 root 之外；穿过已有链接的逃逸由 os.Root 在后续写入时拦截
func Symlink(root *os.Root, link, name string) error {
	if filepath.IsAbs(link) || strings.HasPrefix(link, "/") {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, name, link)
	}
	if _, err := CleanName(path.Join(path.Dir(filepath.ToSlash(name)), filepath.ToSlash(link))); err != nil {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, name, link)
	}
	if err := MkdirParent(root, name); err != nil {
		return err
	}
	_ = root.Remove(name)
	return root.Symlink(link, name)
}

// MkdirParent 在 root 内创建 name 的父目录
func MkdirParent(root *os.Root, name string) error {
	dir := filepath.Dir(name)
	if dir == "." {
		return nil
	}
	return root.MkdirAll(dir, 0755)
}

// CleanName 把归档里的条目名规整成相对路径，拒绝绝对路径和 ".." 逃逸
func CleanName(name string) (string, error) {
	slashed := filepath.ToSlash(name)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return filepath.FromSlash(cleaned), nil
}
