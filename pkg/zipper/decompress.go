package zipper

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"ztools/pkg/detect"
	"ztools/pkg/naming"
	"ztools/pkg/types"

	"github.com/sirupsen/logrus"
)

// Decompress 按文件头探测格式并还原
//
//	gzip + (.tar.gz|.tgz) -> 目录 <base>/ (经临时文件 <base>.tar 中转)
//	gzip + 其他           -> <base>.<inner-ext> 或 <base>
//	7z                    -> 目录 <base>/
//
// 输出永远相对于工作目录，与归档所在位置无关。
func (e *Engine) Decompress(ctx context.Context, inputPath, base string) (Result, error) {
	// 1. 前置条件
	info, err := statInput(inputPath)
	if err != nil {
		return Result{}, err
	}
	if info.IsDir() {
		return Result{}, newError(KindInvalidInput, inputPath, nil, "'%s' is a directory, not an archive", inputPath)
	}
	if base == "" {
		return Result{}, newError(KindInvalidInput, inputPath, nil, "empty output base name")
	}

	cwd, err := e.cwd()
	if err != nil {
		return Result{}, newError(KindIO, "", err, "cannot resolve working directory")
	}

	// 2. 读固定长度的头并分类
	format, err := detect.DetectFile(inputPath)
	if err != nil {
		return Result{}, newError(KindIO, inputPath, err, "cannot read header of '%s'", inputPath)
	}

	log := e.log.WithFields(logrus.Fields{
		"input":  inputPath,
		"format": format,
		"base":   base,
	})
	log.Debug("decompress started")

	// 3. 状态机
	var res Result
	switch format {
	case types.FormatGzip:
		// 是否是 tar 包看的是原始文件名，而不是 magic
		if naming.IsTarball(inputPath) {
			res, err = e.gunzipTarball(inputPath, cwd, base)
		} else {
			res, err = e.gunzipFile(inputPath, naming.GunzipOutput(cwd, base, filepath.Base(inputPath)))
		}
	case types.FormatSevenZip:
		res, err = e.extractSevenZip(ctx, inputPath, resolve(cwd, base))
	default:
		return Result{}, newError(KindUnsupportedFormat, inputPath, nil, "unknown or unsupported format for '%s'", inputPath)
	}
	if err != nil {
		log.WithError(err).Debug("decompress failed")
		return Result{}, err
	}

	log.WithField("output", res.Output).Debug("decompress finished")
	return res, nil
}

// gunzipTarball 分阶段还原 tar.gz：
// (1) gzip 解到临时 <base>.tar  (2) 建 <base>/  (3) 解 tar  (4) 删临时文件
// 临时文件必须完整落盘后才开始解 tar；删除由 defer 保证，覆盖所有提前返回的路径
func (e *Engine) gunzipTarball(inputPath, cwd, base string) (Result, error) {
	staging := naming.TarStagingPath(cwd, base)
	outDir := resolve(cwd, base)

	// 1. 解 gzip 到临时文件
	if _, err := e.decompressStream(inputPath, staging); err != nil {
		e.releaseStaging(staging)
		return Result{}, err
	}
	defer e.releaseStaging(staging)

	// 2. 建输出目录
	created, err := ensureDir(outDir)
	if err != nil {
		return Result{}, newError(KindIO, outDir, err, "cannot create output directory '%s'", outDir)
	}

	// 3. 解 tar
	if err := e.untar.Unpack(staging, outDir); err != nil {
		if created {
			e.discardDir(outDir)
		}
		return Result{}, newError(KindUnpack, inputPath, err, "failed to unpack '%s'", inputPath)
	}

	return Result{Output: outDir, Format: types.FormatGzip, IsDir: true}, nil
}

// releaseStaging 删除临时 tar；它从不逃出本次调用
func (e *Engine) releaseStaging(staging string) {
	if err := os.Remove(staging); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.log.WithError(err).WithField("path", staging).Warn("failed to remove staging tar")
	}
}

func (e *Engine) gunzipFile(inputPath, out string) (Result, error) {
	if samePath(inputPath, out) {
		return Result{}, newError(KindInvalidInput, inputPath, nil,
			"output '%s' would overwrite the input archive, pass an explicit base name", out)
	}

	// 只有本次真正创建或截断过 out 才清理；打不开的 out (例如同名目录) 不属于我们
	if written, err := e.decompressStream(inputPath, out); err != nil {
		if written {
			e.discardFile(out)
		}
		return Result{}, err
	}

	return Result{
		Output: out,
		Format: types.FormatGzip,
		Bytes:  outputSize(out),
	}, nil
}

// decompressStream 把 gzip 输入完整解到 out 文件
// written 表示 out 是否已被本次调用创建或截断
func (e *Engine) decompressStream(inputPath, out string) (written bool, err error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return false, newError(KindIO, inputPath, err, "cannot open '%s'", inputPath)
	}
	defer in.Close()

	f, err := os.Create(out)
	if err != nil {
		return false, newError(KindIO, out, err, "cannot create '%s'", out)
	}

	if err := e.stream.Decompress(f, in); err != nil {
		f.Close()
		return true, newError(KindStreamCodec, inputPath, err, "failed to decompress '%s'", inputPath)
	}
	if err := f.Close(); err != nil {
		return true, newError(KindIO, out, err, "cannot finish '%s'", out)
	}
	return true, nil
}

func (e *Engine) extractSevenZip(ctx context.Context, inputPath, outDir string) (Result, error) {
	created, err := ensureDir(outDir)
	if err != nil {
		return Result{}, newError(KindIO, outDir, err, "cannot create output directory '%s'", outDir)
	}

	// 7z 自带目录解压，不需要中转
	if err := e.archiver.DecompressPath(ctx, inputPath, outDir); err != nil {
		if created {
			e.discardDir(outDir)
		}
		return Result{}, newError(KindBlockArchiver, inputPath, err, "failed to extract '%s'", inputPath)
	}

	return Result{Output: outDir, Format: types.FormatSevenZip, IsDir: true}, nil
}

// ensureDir 创建目录，并报告是不是本次新建的
// 只有本次新建的目录才允许在失败时被清理
func ensureDir(dir string) (bool, error) {
	_, statErr := os.Stat(dir)
	existed := statErr == nil
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, err
	}
	return !existed, nil
}

func samePath(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}
