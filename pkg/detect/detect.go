package detect

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"ztools/pkg/types"
)

// Signature 描述一种格式的 magic 前缀
type Signature struct {
	Format types.Format
	Magic  []byte
}

// Signatures 是按顺序匹配的签名表，先匹配先赢
// 新增格式只需要在这里加一行，不需要改控制流
var Signatures = []Signature{
	{Format: types.FormatGzip, Magic: []byte{0x1f, 0x8b}},
	{Format: types.FormatSevenZip, Magic: []byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}},
}

// HeaderSize 是探测需要读取的字节数 (最长签名的长度)
var HeaderSize = longestSignature()

func longestSignature() int {
	n := 0
	for _, sig := range Signatures {
		n = max(n, len(sig.Magic))
	}
	return n
}

// Detect 对文件头做纯前缀匹配
// 不校验后续字节，也不做 checksum；误判会在解码阶段以 codec 错误暴露出来
func Detect(header []byte) types.Format {
	for _, sig := range Signatures {
		if bytes.HasPrefix(header, sig.Magic) {
			return sig.Format
		}
	}
	return types.FormatUnknown
}

// ReadHeader 精确读取 HeaderSize 个字节
// 数据不足时返回读错误，而不是悄悄报告 Unknown
func ReadHeader(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read %d header bytes: %w", HeaderSize, err)
	}
	return header, nil
}

// DetectFile 打开文件、读头、分类
func DetectFile(path string) (types.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.FormatUnknown, err
	}
	defer f.Close()

	header, err := ReadHeader(f)
	if err != nil {
		return types.FormatUnknown, err
	}
	return Detect(header), nil
}
