// Package vault 把产出的归档存进内容寻址的仓库，再按短哈希取回。
//
// 每个归档对应两个对象：原始字节 (Blob) 和描述它的清单 (Manifest)。
// 用户看到、用来 pull 的是清单的 Hash。
package vault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"ztools/pkg/core"
	"ztools/pkg/detect"
	"ztools/pkg/storage"
	"ztools/pkg/types"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotArchive  = errors.New("file is not a recognised archive")
	ErrCorruptBlob = errors.New("blob content does not match its hash")
)

type Vault struct {
	store storage.Store
	log   *logrus.Entry
	now   func() time.Time
}

func New(store storage.Store, log *logrus.Entry) *Vault {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Vault{
		store: store,
		log:   log.WithField("component", "vault"),
		now:   time.Now,
	}
}

// Push 校验文件是已知格式的归档，然后存入 blob 和清单
func (v *Vault) Push(ctx context.Context, path string) (*core.Manifest, error) {
	// 1. 读入并探测格式
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	format := types.FormatUnknown
	if len(data) >= detect.HeaderSize {
		format = detect.Detect(data[:detect.HeaderSize])
	}
	if format == types.FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrNotArchive, path)
	}

	// 2. 先存 blob，再存指向它的清单
	blob := core.NewBlob(data)
	if err := v.store.Put(ctx, blob); err != nil {
		return nil, fmt.Errorf("failed to store blob: %w", err)
	}

	m, err := core.NewManifest(filepath.Base(path), blob.Size(), format, blob.ID(), v.now())
	if err != nil {
		return nil, err
	}
	if err := v.store.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to store manifest: %w", err)
	}

	v.log.WithFields(logrus.Fields{
		"manifest": m.ID().Short(),
		"blob":     blob.ID().Short(),
		"bytes":    blob.Size(),
	}).Debug("archive pushed")
	return m, nil
}

// Resolve 把短哈希解析成清单
func (v *Vault) Resolve(ctx context.Context, prefix types.HashPrefix) (*core.Manifest, error) {
	hash, err := v.store.ExpandHash(ctx, prefix)
	if err != nil {
		return nil, err
	}

	r, err := v.store.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", hash.Short(), err)
	}
	return core.DecodeManifest(data)
}

// Pull 取回归档写到 outPath；outPath 为空时使用清单里的原始文件名
// 写入过程中校验内容 Hash，不一致时不留下任何文件
func (v *Vault) Pull(ctx context.Context, prefix types.HashPrefix, outPath string) (*core.Manifest, string, error) {
	// 1. 解析清单
	m, err := v.Resolve(ctx, prefix)
	if err != nil {
		return nil, "", err
	}
	if outPath == "" {
		outPath = filepath.Base(m.Name)
	}

	// 2. 读 blob
	r, err := v.store.Get(ctx, m.Blob)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get blob %s: %w", m.Blob.Short(), err)
	}
	defer r.Close()

	// 3. 写临时文件，边写边算 Hash
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".zt-pull-*")
	if err != nil {
		return nil, "", err
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), r); err != nil {
		tmp.Close()
		return nil, "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, "", err
	}
	if got := types.Hash(hex.EncodeToString(h.Sum(nil))); got != m.Blob {
		return nil, "", fmt.Errorf("%w: want %s, got %s", ErrCorruptBlob, m.Blob.Short(), got.Short())
	}

	// 4. 落到最终位置
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return nil, "", err
	}
	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return nil, "", err
	}
	return m, outPath, nil
}
