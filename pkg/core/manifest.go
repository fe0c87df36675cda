package core

import (
	"errors"
	"fmt"
	"time"

	"ztools/pkg/types"
)

var ErrNotManifest = errors.New("object is not a manifest")

// Manifest 描述仓库里的一个归档：原始文件名、大小、格式和 blob 指针
// 清单自身也是内容寻址的，ID 是其 cbor 编码的 Hash
type Manifest struct {
	hash     types.Hash `cbor:"-"`
	rawBytes []byte     `cbor:"-"`

	TypeVal   ObjectType `cbor:"t"`
	Name      string     `cbor:"n"`
	Size      int64      `cbor:"s"`
	Format    string     `cbor:"f"`
	Blob      types.Hash `cbor:"b"`
	CreatedAt int64      `cbor:"ts"`
}

func NewManifest(name string, size int64, format types.Format, blob types.Hash, createdAt time.Time) (*Manifest, error) {
	m := &Manifest{
		TypeVal:   TypeManifest,
		Name:      name,
		Size:      size,
		Format:    format.String(),
		Blob:      blob,
		CreatedAt: createdAt.Unix(),
	}
	if err := m.seal(); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeManifest 从存储读回的字节还原清单，并重新计算 ID
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := DecodeObject(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.TypeVal != TypeManifest {
		return nil, fmt.Errorf("%w: type %q", ErrNotManifest, m.TypeVal)
	}
	if !m.Blob.IsValid() {
		return nil, fmt.Errorf("manifest has invalid blob hash %q", m.Blob)
	}
	if err := m.seal(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) seal() error {
	h, b, err := CalculateHash(m)
	if err != nil {
		return err
	}
	m.hash = h
	m.rawBytes = b
	return nil
}

func (m *Manifest) Type() ObjectType { return TypeManifest }
func (m *Manifest) ID() types.Hash   { return m.hash }
func (m *Manifest) Bytes() []byte    { return m.rawBytes }

// Created 返回创建时间 (本地时区)
func (m *Manifest) Created() time.Time { return time.Unix(m.CreatedAt, 0) }
