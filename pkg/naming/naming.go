// Package naming 负责推导输出文件的 base name，以及引擎产出物的命名规则。
//
// 命名是本工具唯一对外承诺的“线上格式”：
//
//	目录 + gzip   -> <base>.tar.gz
//	文件 + gzip   -> <base>.<ext>.gz
//	任意 + 7z     -> <base>.7z
//	解压 tar.gz   -> <base>/
//	解压 .gz      -> <base>.<inner-ext>
//	解压 7z       -> <base>/
package naming

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultBase 是推导失败时的兜底名字
const DefaultBase = "output"

// unzipSuffixes 按优先级排列，长的复合后缀必须排在前面
// 否则 a.tar.gz 会被当成 a.tar
var unzipSuffixes = []string{".tar.gz", ".tgz", ".gz", ".7z"}

// ZipBase 推导压缩输出的 base name
// override 非空时原样返回，不做任何校验
func ZipBase(inputPath, override string) string {
	if override != "" {
		return override
	}

	info, err := os.Stat(inputPath)
	if err == nil && info.IsDir() {
		// 目录：取自身的叶子名 (不是父路径)
		return orDefault(leaf(inputPath))
	}
	// 文件 (或者 stat 失败，交给引擎去报 path-not-found)
	return orDefault(Stem(leaf(inputPath)))
}

// UnzipBase 推导解压输出的 base name
func UnzipBase(inputPath, override string) string {
	if override != "" {
		return override
	}

	name := leaf(inputPath)
	for _, suffix := range unzipSuffixes {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		trimmed := strings.TrimSuffix(name, suffix)
		if suffix == ".gz" {
			// 单文件 .gz：解压时会把内层扩展名接回去 (notes.txt.gz -> notes + .txt)
			// 所以 base 里不能再带一次
			trimmed = Stem(trimmed)
		}
		return orDefault(trimmed)
	}
	return orDefault(Stem(name))
}

// InnerExt 返回去掉 .gz 之后剩余文件名的扩展名 (不带点)
// report.txt.gz -> txt；data.gz -> ""
func InnerExt(filename string) string {
	inner := strings.TrimSuffix(leaf(filename), ".gz")
	return Ext(inner)
}

// IsTarball 判断文件名是否表示 gzip 包裹的 tar
func IsTarball(filename string) bool {
	name := leaf(filename)
	return strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}

// GzipOutput 返回 gzip 压缩的输出路径
func GzipOutput(base, inputPath string, isDir bool) string {
	if isDir {
		return base + ".tar.gz"
	}
	ext := Ext(leaf(inputPath))
	if ext == "" {
		// 没有扩展名就不要多出一个空段 (避免 base..gz)
		return base + ".gz"
	}
	return base + "." + ext + ".gz"
}

// SevenZipOutput 返回 7z 压缩的输出路径
func SevenZipOutput(base string) string {
	return base + ".7z"
}

// GunzipOutput 返回单文件 gzip 解压的输出路径 (相对 cwd)
func GunzipOutput(cwd, base, archiveName string) string {
	if ext := InnerExt(archiveName); ext != "" {
		return filepath.Join(cwd, base+"."+ext)
	}
	return filepath.Join(cwd, base)
}

// TarStagingPath 返回 tar.gz 解压时的临时 tar 路径
// 路径由 base 决定，同一 base 的并发解压会冲突 (已知限制)
func TarStagingPath(cwd, base string) string {
	return filepath.Join(cwd, base+".tar")
}

// Stem 去掉最后一个扩展名；点开头且没有其他点的文件名 (.bashrc) 视为没有扩展名
func Stem(name string) string {
	ext := Ext(name)
	if ext == "" {
		return name
	}
	return strings.TrimSuffix(name, "."+ext)
}

// Ext 返回最后一个扩展名 (不带点)
func Ext(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// leaf 返回路径的最后一段；根路径、"." 之类返回空串
func leaf(p string) string {
	if p == "" {
		return ""
	}
	base := filepath.Base(filepath.Clean(p))
	switch base {
	case ".", "..", string(filepath.Separator):
		return ""
	}
	return base
}

func orDefault(s string) string {
	if s == "" {
		return DefaultBase
	}
	return s
}
