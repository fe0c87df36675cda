package storage

import (
	"context"
	"errors"
	"io"

	"ztools/pkg/core"
	"ztools/pkg/types"
)

var (
	ErrNotFound       = errors.New("object not found")
	ErrAmbiguousHash  = errors.New("ambiguous hash prefix")
	ErrPrefixTooShort = errors.New("hash prefix too short")
)

// MinPrefixLen 是短哈希的最小长度
const MinPrefixLen = 4

// Store 是内容寻址的对象存储 (本地磁盘或 S3)
type Store interface {
	// Put 持久化对象；已存在时什么都不做
	Put(ctx context.Context, obj core.Object) error

	// Get 按 Hash 读取对象，不存在时返回 ErrNotFound
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把短哈希扩展成完整 Hash
	// 没有匹配返回 ErrNotFound，多于一个匹配返回 ErrAmbiguousHash
	ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error)
}
