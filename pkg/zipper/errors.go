package zipper

import (
	"errors"
	"fmt"
)

// Kind 是引擎失败的分类
type Kind string

const (
	KindPathNotFound      Kind = "path not found"
	KindUnsupportedFormat Kind = "unsupported format"
	KindStreamCodec       Kind = "gzip error"
	KindBlockArchiver     Kind = "7z error"
	KindUnpack            Kind = "untar error"
	KindIO                Kind = "I/O error"
	KindInvalidInput      Kind = "invalid input"
)

// Error 是引擎返回给调用方的类型化错误
// 所有失败对当前调用都是终态，不重试
type Error struct {
	Kind   Kind
	Path   string // 出错时正在处理的路径 (可能为空)
	Detail string // 给人看的描述
	Err    error  // 底层错误
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Detail
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, path string, err error, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Path:   path,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

// KindOf 提取错误分类；不是引擎错误时返回空串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind 判断错误是否属于某个分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
