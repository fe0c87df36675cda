package zipper

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	err := newError(KindIO, "/tmp/x", fs.ErrPermission, "cannot create %s", "/tmp/x")
	assert.Equal(t, "I/O error: cannot create /tmp/x: permission denied", err.Error())
	assert.ErrorIs(t, err, fs.ErrPermission)

	bare := newError(KindUnsupportedFormat, "a.bin", nil, "unknown or unsupported format for '%s'", "a.bin")
	assert.Equal(t, "unsupported format: unknown or unsupported format for 'a.bin'", bare.Error())
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	inner := newError(KindPathNotFound, "/nope", nil, "input '%s' does not exist", "/nope")
	wrapped := fmt.Errorf("zip failed: %w", inner)

	assert.Equal(t, KindPathNotFound, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindPathNotFound))
	assert.False(t, IsKind(wrapped, KindIO))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
