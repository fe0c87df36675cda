// Package zipper 是归档转码引擎：压缩 (文件/目录 -> gzip 或 7z) 与解压 (按内容探测格式)。
//
// 引擎只消费三样东西：已解析的输入路径、目标算法、base name。
// 它不解析命令行，也不读配置；这些由 cmd/zt 和 pkg/app 负责组装。
package zipper

import (
	"errors"
	"os"
	"path/filepath"

	"ztools/pkg/codec"
	"ztools/pkg/codec/tarball"
	"ztools/pkg/types"

	"github.com/sirupsen/logrus"
)

// Engine 持有所有 codec 协作者
// 每次调用都是单线程、同步、阻塞的；Engine 本身没有可变状态，可以复用
type Engine struct {
	stream   codec.StreamCodec
	archiver codec.BlockArchiver
	tar      codec.TarBuilder
	untar    codec.TarReader

	workDir          string // 空串表示调用时取 os.Getwd()
	cleanupOnFailure bool
	log              *logrus.Entry
}

// Option 配置 Engine
type Option func(*Engine)

// WithWorkDir 指定输出路径的基准目录 (默认是进程当前目录)
func WithWorkDir(dir string) Option {
	return func(e *Engine) { e.workDir = dir }
}

// WithTarBuilder 替换目录打包用的 tar 构建器
func WithTarBuilder(b codec.TarBuilder) Option {
	return func(e *Engine) { e.tar = b }
}

// WithTarReader 替换 tar 解包器
func WithTarReader(r codec.TarReader) Option {
	return func(e *Engine) { e.untar = r }
}

// WithCleanupOnFailure 控制失败时是否尽力删除本次创建的输出
// 这只是尽力而为，不是事务回滚
func WithCleanupOnFailure(enabled bool) Option {
	return func(e *Engine) { e.cleanupOnFailure = enabled }
}

// WithLogger 注入日志
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine 组装引擎
func NewEngine(stream codec.StreamCodec, archiver codec.BlockArchiver, opts ...Option) *Engine {
	e := &Engine{
		stream:           stream,
		archiver:         archiver,
		tar:              tarball.NewBuilder(nil),
		untar:            tarball.NewReader(),
		cleanupOnFailure: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.NewEntry(logrus.StandardLogger())
	}
	e.log = e.log.WithField("component", "zipper")
	return e
}

// Result 描述一次成功操作的产出
type Result struct {
	Output string       // 输出文件或目录 (绝对路径)
	Format types.Format // 使用的格式
	IsDir  bool         // 输出是否是目录
	Bytes  int64        // 输出文件大小；目录为 0
}

// cwd 返回输出路径的基准目录
func (e *Engine) cwd() (string, error) {
	if e.workDir != "" {
		return filepath.Abs(e.workDir)
	}
	return os.Getwd()
}

// resolve 把相对输出路径挂到基准目录下
func resolve(cwd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}

// statInput 校验输入存在；不存在时在任何 codec 被调用之前失败
func statInput(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, newError(KindPathNotFound, path, nil, "input '%s' does not exist", path)
	}
	if err != nil {
		return nil, newError(KindIO, path, err, "cannot inspect '%s'", path)
	}
	return info, nil
}

// discardDir 在失败路径上尽力删除本次新建的输出目录
func (e *Engine) discardDir(dir string) {
	if !e.cleanupOnFailure || dir == "" {
		return
	}
	e.cleanup(dir, os.RemoveAll(dir))
}

// discardFile 在失败路径上尽力删除本次写过的输出文件
// 只删普通文件；同名目录一律不动
func (e *Engine) discardFile(path string) {
	if !e.cleanupOnFailure || path == "" {
		return
	}
	info, err := os.Lstat(path)
	if err != nil || info.IsDir() {
		return
	}
	e.cleanup(path, os.Remove(path))
}

func (e *Engine) cleanup(path string, err error) {
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		e.log.WithError(err).WithField("path", path).Warn("failed to clean up partial output")
		return
	}
	e.log.WithField("path", path).Debug("removed partial output")
}

func outputSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
