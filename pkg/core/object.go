package core

import "ztools/pkg/types"

// ObjectType 区分仓库里的两类对象
type ObjectType string

const (
	TypeBlob     ObjectType = "blob"     // 归档文件的原始字节
	TypeManifest ObjectType = "manifest" // 描述一个归档的清单
)

// Object 是可以被 storage.Store 持久化的对象
type Object interface {
	Type() ObjectType

	// ID 是对象内容的 Hash
	ID() types.Hash

	// Bytes 是写入存储的字节
	Bytes() []byte
}
