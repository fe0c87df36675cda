package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"ztools/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// 清单的编码选项：同一份清单必须编码成同一串字节，否则 Hash 不稳定
var encOptions = cbor.EncOptions{
	// 1. Map Key 排序
	Sort: cbor.SortCanonical,

	// 2. 时间一律存 Unix 整数，不打 Tag
	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// 3. 禁止不定长编码
	IndefLength: cbor.IndefLengthForbidden,
}

var em, _ = encOptions.EncMode()

// 解码选项：清单来自存储后端，按不可信输入处理
var decOptions = cbor.DecOptions{
	MaxArrayElements: 1024,
	MaxMapPairs:      1024,
	MaxNestedLevels:  16,

	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
	TimeTag:     cbor.DecTagIgnored,
}

var dm, _ = decOptions.DecMode()

// CalculateHash 编码对象并计算其 Hash
func CalculateHash(v any) (types.Hash, []byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal object: %w", err)
	}
	return CalculateBlobHash(data), data, nil
}

// CalculateBlobHash 计算原始字节的 Hash
func CalculateBlobHash(data []byte) types.Hash {
	sum := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(sum[:]))
}

// DecodeObject 按严格模式解码
func DecodeObject(data []byte, v any) error {
	return dm.Unmarshal(data, v)
}
