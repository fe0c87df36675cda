// pkg/types/common.go
package types

import (
	"fmt"
	"strings"
)

// Algorithm 是压缩时由调用方选择的算法
// 这是一个封闭集合，只有 gzip 和 7z 两种
type Algorithm string

const (
	AlgorithmGzip     Algorithm = "gzip" // 单流压缩 (单文件直接压，目录先 tar 再压)
	AlgorithmSevenZip Algorithm = "7zip" // 块归档器，目录和文件都直接交给它
)

func (a Algorithm) String() string { return string(a) }

// ParseAlgorithm 解析 CLI / 配置里的算法名
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gzip", "gz":
		return AlgorithmGzip, nil
	case "7zip", "7z", "sevenzip":
		return AlgorithmSevenZip, nil
	default:
		return "", fmt.Errorf("unknown compression algorithm: %q", s)
	}
}

// Format 是根据文件头 magic 探测出来的归档格式
type Format int

const (
	FormatUnknown Format = iota
	FormatGzip
	FormatSevenZip
)

func (f Format) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatSevenZip:
		return "7z"
	default:
		return "unknown"
	}
}

// Hash 代表对象的唯一标识符 (SHA256 Hex String)
// 这是一个“值对象”，应当是不可变的。
type Hash string

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool  { return h == "" }
func (h Hash) IsValid() bool { return len(h) == 64 } // 简单的长度检查

// Short 返回前 8 位，用于终端展示
func (h Hash) Short() string {
	if len(h) < 8 {
		return string(h)
	}
	return string(h[:8])
}

type HashPrefix string

func (p HashPrefix) String() string { return string(p) }
