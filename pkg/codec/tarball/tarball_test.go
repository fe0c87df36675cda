package tarball

import (
	"archive/tar"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree 按 "相对路径 -> 内容" 创建一棵目录树
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func listTar(t *testing.T, data []byte) []string {
	t.Helper()
	var names []string
	tr := tar.NewReader(bytes.NewReader(data))
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	return names
}

func TestBuild_TopLevelEntry(t *testing.T) {
	src := filepath.Join(t.TempDir(), "project")
	writeTree(t, src, map[string]string{
		"main.go":        "package main",
		"docs/readme.md": "# hi",
		"docs/img/a.png": "png",
		"logs/debug.log": "noise",
	})

	var buf bytes.Buffer
	require.NoError(t, NewBuilder(nil).Build(&buf, src, "project"))

	names := listTar(t, buf.Bytes())
	assert.Contains(t, names, "project/")
	assert.Contains(t, names, "project/main.go")
	assert.Contains(t, names, "project/docs/img/a.png")
	for _, n := range names {
		assert.True(t, strings.HasPrefix(n, "project/"), "所有条目都必须挂在顶层目录下: %s", n)
	}
}

func TestBuild_Skip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "project")
	writeTree(t, src, map[string]string{
		"main.go":        "package main",
		"logs/debug.log": "noise",
		"app.log":        "noise",
	})

	var loadedFor string
	loader := func(dir string) (SkipFunc, error) {
		loadedFor = dir
		return func(rel string, isDir bool) bool {
			return rel == "logs" || strings.HasSuffix(rel, ".log")
		}, nil
	}

	var buf bytes.Buffer
	require.NoError(t, NewBuilder(loader).Build(&buf, src, "project"))
	assert.Equal(t, src, loadedFor, "规则应按被打包的目录加载")

	names := listTar(t, buf.Bytes())
	assert.Contains(t, names, "project/main.go")
	assert.NotContains(t, names, "project/logs/")
	assert.NotContains(t, names, "project/logs/debug.log")
	assert.NotContains(t, names, "project/app.log")
}

func TestBuild_LoaderError(t *testing.T) {
	loader := func(dir string) (SkipFunc, error) {
		return nil, errors.New("bad pattern file")
	}
	var buf bytes.Buffer
	err := NewBuilder(loader).Build(&buf, t.TempDir(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad pattern file")
}

func TestBuildAndUnpack_RoundTrip(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "tree")
	files := map[string]string{
		"a.txt":          "alpha",
		"nested/b.txt":   "bravo",
		"nested/deep/c":  "charlie",
		"empty-file.bin": "",
	}
	writeTree(t, src, files)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty-dir"), 0755))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(src, "link-to-a")))

	// 1. 打包到磁盘
	archive := filepath.Join(tmp, "tree.tar")
	f, err := os.Create(archive)
	require.NoError(t, err)
	require.NoError(t, NewBuilder(nil).Build(f, src, "tree"))
	require.NoError(t, f.Close())

	// 2. 解包
	out := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(out, 0755))
	require.NoError(t, NewReader().Unpack(archive, out))

	// 3. 比对
	for rel, content := range files {
		got, err := os.ReadFile(filepath.Join(out, "tree", filepath.FromSlash(rel)))
		require.NoError(t, err, rel)
		assert.Equal(t, content, string(got), rel)
	}
	info, err := os.Stat(filepath.Join(out, "tree", "empty-dir"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	link, err := os.Readlink(filepath.Join(out, "tree", "link-to-a"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt", link)
}

func TestExtract_RejectsTraversal(t *testing.T) {
	tests := []struct {
		name string
		hdr  tar.Header
	}{
		{"dotdot file", tar.Header{Name: "../evil.txt", Typeflag: tar.TypeReg, Mode: 0644, Size: 4}},
		{"absolute file", tar.Header{Name: "/etc/evil", Typeflag: tar.TypeReg, Mode: 0644, Size: 4}},
		{"escaping symlink", tar.Header{Name: "ok/link", Typeflag: tar.TypeSymlink, Linkname: "../../outside"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tw := tar.NewWriter(&buf)
			hdr := tt.hdr
			require.NoError(t, tw.WriteHeader(&hdr))
			if hdr.Size > 0 {
				_, err := tw.Write([]byte("evil"))
				require.NoError(t, err)
			}
			require.NoError(t, tw.Close())

			out := t.TempDir()
			err := Extract(&buf, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsafePath), "got %v", err)
		})
	}
}

func TestExtract_Corrupted(t *testing.T) {
	err := Extract(bytes.NewReader(bytes.Repeat([]byte{0xff}, 1024)), t.TempDir())
	assert.Error(t, err)
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"a/b/c.txt", filepath.Join("a", "b", "c.txt"), false},
		{"a/../b", "b", false},
		{"dir/", "dir", false},
		{"..foo", "..foo", false}, // 合法文件名，不是逃逸
		{"a/../../b", "", true},
		{"..", "", true},
		{"/etc/passwd", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsafePath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// tarOf 按顺序把条目写成一个内存 tar
func tarOf(t *testing.T, entries ...tar.Header) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, hdr := range entries {
		hdr := hdr
		body := ""
		if hdr.Typeflag == tar.TypeReg {
			body = "evil"
			hdr.Size = int64(len(body))
		}
		require.NoError(t, tw.WriteHeader(&hdr))
		if body != "" {
			_, err := tw.Write([]byte(body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return &buf
}

func TestExtract_SymlinkChainCannotEscape(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(parent, "out")

	// l2 -> "."，l1 -> "l2/.."：按字面都在 out 里，实际 l1 指向 out 的父目录
	buf := tarOf(t,
		tar.Header{Name: "l2", Typeflag: tar.TypeSymlink, Linkname: "."},
		tar.Header{Name: "l1", Typeflag: tar.TypeSymlink, Linkname: "l2/.."},
		tar.Header{Name: "l1/evil.txt", Typeflag: tar.TypeReg, Mode: 0644},
	)

	err := Extract(buf, out)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(parent, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr), "file must not be written outside the output directory")
}

func TestExtract_HardLinkThroughSymlinkCannotEscape(t *testing.T) {
	parent := t.TempDir()
	out := filepath.Join(parent, "out")
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret"), []byte("s3cr3t"), 0600))

	buf := tarOf(t,
		tar.Header{Name: "up", Typeflag: tar.TypeSymlink, Linkname: "sub/.."},
		tar.Header{Name: "sub", Typeflag: tar.TypeSymlink, Linkname: "."},
		tar.Header{Name: "stolen", Typeflag: tar.TypeLink, Linkname: "up/secret"},
	)

	err := Extract(buf, out)
	require.Error(t, err)

	_, statErr := os.Lstat(filepath.Join(out, "stolen"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_OmitsOutputInsideTree(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "alpha"})

	// 输出归档就在被打包的目录里
	out := filepath.Join(src, "self.tar")
	f, err := os.Create(out)
	require.NoError(t, err)
	require.NoError(t, NewBuilder(nil).Build(f, src, "src", out))
	require.NoError(t, f.Close())

	in, err := os.Open(out)
	require.NoError(t, err)
	defer in.Close()

	var names []string
	tr := tar.NewReader(in)
	for {
		hdr, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, hdr.Name)
	}
	assert.Contains(t, names, "src/a.txt")
	assert.NotContains(t, names, "src/self.tar")
}
