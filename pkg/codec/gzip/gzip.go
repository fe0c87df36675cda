package gzip

import (
	"fmt"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
)

// Codec 是基于 klauspost/compress 的 gzip 流编解码器
type Codec struct {
	level int
}

// NewCodec 创建 gzip 编解码器
// level 超出范围时回退到默认压缩级别
func NewCodec(level int) *Codec {
	if level < kgzip.HuffmanOnly || level > kgzip.BestCompression {
		level = kgzip.DefaultCompression
	}
	return &Codec{level: level}
}

// Level 返回实际生效的压缩级别
func (c *Codec) Level() int { return c.level }

func (c *Codec) Compress(dst io.Writer, src io.Reader) error {
	zw, err := kgzip.NewWriterLevel(dst, c.level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		return fmt.Errorf("gzip compress failed: %w", err)
	}
	// Close 才会写出 footer (CRC32 + size)，错误不能吞
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

func (c *Codec) Decompress(dst io.Writer, src io.Reader) error {
	zr, err := kgzip.NewReader(src)
	if err != nil {
		return fmt.Errorf("invalid gzip stream: %w", err)
	}
	defer zr.Close()

	if _, err := io.Copy(dst, zr); err != nil {
		return fmt.Errorf("gzip decompress failed: %w", err)
	}
	return nil
}
