// Package codec 定义了归档引擎依赖的外部协作者 (collaborators)。
// 引擎只把它们当黑盒用：流式压缩器只管 reader -> writer，
// 块归档器只管 path -> path。
package codec

import (
	"context"
	"io"
)

// StreamCodec 是纯粹的流变换，没有任何路径语义
type StreamCodec interface {
	// Compress 把 src 的全部字节压缩写入 dst
	Compress(dst io.Writer, src io.Reader) error
	// Decompress 把 src 的压缩流解压写入 dst
	Decompress(dst io.Writer, src io.Reader) error
}

// BlockArchiver 是自带目录遍历和格式处理的通用归档器
type BlockArchiver interface {
	// CompressPath 把文件或目录 src 打包成单个归档文件 dst
	CompressPath(ctx context.Context, src, dst string) error
	// DecompressPath 把归档文件 src 解到目录 dstDir
	DecompressPath(ctx context.Context, src, dstDir string) error
}

// TarBuilder 把一个目录树以 entryName 为顶层条目写成 tar 流
// omit 列出不能被打包的文件，例如落在目录内部的输出归档
type TarBuilder interface {
	Build(w io.Writer, dir, entryName string, omit ...string) error
}

// TarReader 把磁盘上的 tar 文件完整解到 outDir
type TarReader interface {
	Unpack(archivePath, outDir string) error
}
