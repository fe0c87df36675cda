package gzip

import (
	"bytes"
	"crypto/rand"
	"testing"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	// 1. 准备数据：一段随机数据 + 一段高度可压缩的数据
	data := make([]byte, 256*1024)
	_, err := rand.Read(data[:128*1024])
	require.NoError(t, err)

	c := NewCodec(kgzip.DefaultCompression)

	// 2. 压缩
	var compressed bytes.Buffer
	require.NoError(t, c.Compress(&compressed, bytes.NewReader(data)))
	assert.Equal(t, []byte{0x1f, 0x8b}, compressed.Bytes()[:2], "输出必须带 gzip magic")

	// 3. 解压并比对
	var restored bytes.Buffer
	require.NoError(t, c.Decompress(&restored, &compressed))
	assert.Equal(t, data, restored.Bytes())
}

func TestCodec_EmptyInput(t *testing.T) {
	c := NewCodec(kgzip.BestSpeed)

	var compressed bytes.Buffer
	require.NoError(t, c.Compress(&compressed, bytes.NewReader(nil)))

	var restored bytes.Buffer
	require.NoError(t, c.Decompress(&restored, &compressed))
	assert.Equal(t, 0, restored.Len())
}

func TestCodec_DecompressGarbage(t *testing.T) {
	c := NewCodec(kgzip.DefaultCompression)

	var out bytes.Buffer
	err := c.Decompress(&out, bytes.NewReader([]byte("definitely not gzip")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid gzip stream")

	// magic 对了但后面是垃圾：在解码阶段失败
	err = c.Decompress(&out, bytes.NewReader([]byte{0x1f, 0x8b, 0x08, 0x00, 0xde, 0xad, 0xbe, 0xef, 0x00, 0x00, 0x01}))
	assert.Error(t, err)
}

func TestNewCodec_LevelFallback(t *testing.T) {
	assert.Equal(t, kgzip.DefaultCompression, NewCodec(42).Level())
	assert.Equal(t, kgzip.BestCompression, NewCodec(kgzip.BestCompression).Level())
}
