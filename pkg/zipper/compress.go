package zipper

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"ztools/pkg/naming"
	"ztools/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Compress 把 inputPath 压缩成一个归档
//
//	gzip + 目录 -> <base>.tar.gz (tar 流直接管道进 gzip)
//	gzip + 文件 -> <base>.<ext>.gz
//	7z          -> <base>.7z
//
// 输出相对于工作目录；同名输出会被直接覆盖。
func (e *Engine) Compress(ctx context.Context, inputPath string, alg types.Algorithm, base string) (Result, error) {
	// 1. 前置条件：输入必须存在
	info, err := statInput(inputPath)
	if err != nil {
		return Result{}, err
	}
	if base == "" {
		return Result{}, newError(KindInvalidInput, inputPath, nil, "empty output base name")
	}

	cwd, err := e.cwd()
	if err != nil {
		return Result{}, newError(KindIO, "", err, "cannot resolve working directory")
	}

	log := e.log.WithFields(logrus.Fields{
		"input":     inputPath,
		"algorithm": alg,
		"base":      base,
		"dir":       info.IsDir(),
	})
	log.Debug("compress started")

	// 2. 按算法分发 (封闭集合，穷举)
	var res Result
	switch alg {
	case types.AlgorithmGzip:
		res, err = e.compressGzip(inputPath, info, resolve(cwd, naming.GzipOutput(base, inputPath, info.IsDir())))
	case types.AlgorithmSevenZip:
		res, err = e.compressSevenZip(ctx, inputPath, resolve(cwd, naming.SevenZipOutput(base)))
	default:
		return Result{}, newError(KindInvalidInput, inputPath, nil, "unknown compression algorithm '%s'", alg)
	}
	if err != nil {
		log.WithError(err).Debug("compress failed")
		return Result{}, err
	}

	log.WithFields(logrus.Fields{"output": res.Output, "bytes": res.Bytes}).Debug("compress finished")
	return res, nil
}

func (e *Engine) compressGzip(inputPath string, info os.FileInfo, out string) (res Result, err error) {
	f, err := os.Create(out)
	if err != nil {
		return Result{}, newError(KindIO, out, err, "cannot create output '%s'", out)
	}
	defer func() {
		if err != nil {
			e.discardFile(out)
		}
	}()

	if info.IsDir() {
		err = e.gzipDirectory(f, inputPath, out)
	} else {
		err = e.gzipFile(f, inputPath)
	}
	if err != nil {
		f.Close()
		return Result{}, err
	}

	if err = f.Close(); err != nil {
		return Result{}, newError(KindIO, out, err, "cannot finish output '%s'", out)
	}

	return Result{
		Output: out,
		Format: types.FormatGzip,
		IsDir:  false,
		Bytes:  outputSize(out),
	}, nil
}

func (e *Engine) gzipFile(dst io.Writer, inputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return newError(KindIO, inputPath, err, "cannot open '%s'", inputPath)
	}
	defer in.Close()

	if err := e.stream.Compress(dst, in); err != nil {
		return newError(KindStreamCodec, inputPath, err, "failed to compress '%s'", inputPath)
	}
	return nil
}

// pipeError 标记从管道另一端传过来的错误；它由对端自己上报，本端不重复报告
type pipeError struct{ err error }

func (p pipeError) Error() string { return p.err.Error() }
func (p pipeError) Unwrap() error { return p.err }

func fromPeer(err error) bool {
	var pe pipeError
	return errors.As(err, &pe)
}

// gzipDirectory 用 io.Pipe 把 tar 生产者和 gzip 消费者串起来
// 不在内存或磁盘上落整份 tar；out 落在目录内部时不会把自己打进去
func (e *Engine) gzipDirectory(dst io.Writer, dir, out string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return newError(KindIO, dir, err, "cannot resolve '%s'", dir)
	}
	entryName := filepath.Base(abs)
	if entryName == string(filepath.Separator) || entryName == "." {
		return newError(KindInvalidInput, dir, nil, "cannot determine directory name of '%s'", dir)
	}

	pr, pw := io.Pipe()

	// 每一端只上报自己引起的错误，所以 Wait 的结果就是根因
	var g errgroup.Group
	g.Go(func() error {
		err := e.tar.Build(pw, abs, entryName, out)
		if err == nil {
			return pw.Close()
		}
		pw.CloseWithError(pipeError{err})
		if fromPeer(err) {
			return nil
		}
		return newError(KindIO, dir, err, "failed to archive directory '%s'", dir)
	})
	g.Go(func() error {
		err := e.stream.Compress(dst, pr)
		if err == nil {
			return nil
		}
		pr.CloseWithError(pipeError{err}) // 让生产者的写立即返回
		if fromPeer(err) {
			return nil
		}
		return newError(KindStreamCodec, dir, err, "failed to compress directory '%s'", dir)
	})
	return g.Wait()
}

func (e *Engine) compressSevenZip(ctx context.Context, inputPath, out string) (Result, error) {
	// base 里可能带路径分隔符，先确保父目录存在
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return Result{}, newError(KindIO, out, err, "cannot create parent directory of '%s'", out)
	}

	if err := e.archiver.CompressPath(ctx, inputPath, out); err != nil {
		e.discardFile(out)
		return Result{}, newError(KindBlockArchiver, inputPath, err, "failed to archive '%s'", inputPath)
	}

	return Result{
		Output: out,
		Format: types.FormatSevenZip,
		IsDir:  false,
		Bytes:  outputSize(out),
	}, nil
}
