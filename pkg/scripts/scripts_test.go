package scripts

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, dir, name, body string, perm os.FileMode) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), perm))
	return p
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not runnable on windows")
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "deploy.sh", "", 0644)

	t.Run("补全 .sh", func(t *testing.T) {
		p, err := Resolve(dir, "deploy")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deploy.sh"), p)
	})

	t.Run("显式 .sh", func(t *testing.T) {
		p, err := Resolve(dir, "deploy.sh")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deploy.sh"), p)
	})

	t.Run("其他扩展名", func(t *testing.T) {
		_, err := Resolve(dir, "deploy.py")
		assert.ErrorIs(t, err, ErrUnsupportedExtension)
	})

	t.Run("脚本不存在", func(t *testing.T) {
		_, err := Resolve(dir, "missing")
		assert.ErrorIs(t, err, ErrScriptNotFound)
	})

	t.Run("名字不能跳出脚本目录", func(t *testing.T) {
		// 目录外真的放一个脚本，确认不是因为找不到才失败
		outside := filepath.Dir(dir)
		writeScript(t, outside, "escape.sh", "", 0644)

		for _, name := range []string{"../escape", "../../bin/x", "sub/deploy", `..\escape`, "..", ""} {
			_, err := Resolve(dir, name)
			assert.ErrorIs(t, err, ErrInvalidName, name)
		}
	})

	t.Run("目录不存在", func(t *testing.T) {
		_, err := Resolve(filepath.Join(dir, "nope"), "deploy")
		assert.ErrorIs(t, err, ErrDirectoryNotFound)
	})
}

func TestRun_AddsExecuteBitAndPassesArgs(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	p := writeScript(t, dir, "greet.sh", `echo "hi $1 $2"`+"\n", 0644)

	var out bytes.Buffer
	err := Run(context.Background(), dir, "greet", []string{"a", "b"}, Stdio{Out: &out})
	require.NoError(t, err)
	assert.Equal(t, "hi a b\n", out.String())

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o111), info.Mode().Perm()&0o111, "执行位必须被补上")
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeScript(t, dir, "fail.sh", "exit 3\n", 0755)

	err := Run(context.Background(), dir, "fail", nil, Stdio{Out: &bytes.Buffer{}})
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "script 'fail' exited with status 3", exitErr.Error())
}

func TestRun_RejectsBeforeSpawning(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "tool.rb", "", 0644)

	err := Run(context.Background(), dir, "tool.rb", nil, Stdio{})
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}
