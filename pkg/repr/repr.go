// Package repr 在十进制、二进制、八进制、十六进制之间转换无符号整数。
package repr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Representation 是输出的进制
type Representation int

const (
	Decimal Representation = iota
	Binary
	Octal
	Hexadecimal
)

var (
	ErrUnknownRepresentation = errors.New("unknown representation")
	ErrInvalidNumber         = errors.New("invalid representation number")
)

// ParseRepresentation 解析 --to 参数 (大小写不敏感)
func ParseRepresentation(s string) (Representation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "decimal":
		return Decimal, nil
	case "b", "binary":
		return Binary, nil
	case "o", "octal":
		return Octal, nil
	case "x", "hex", "hexadecimal":
		return Hexadecimal, nil
	}
	return Decimal, fmt.Errorf("%w: %q", ErrUnknownRepresentation, s)
}

func (r Representation) String() string {
	switch r {
	case Binary:
		return "binary"
	case Octal:
		return "octal"
	case Hexadecimal:
		return "hexadecimal"
	default:
		return "decimal"
	}
}

// Convert 把 value 转成目标进制
// 输入可带 0x / 0b / 0o 前缀，否则按十进制解析；前缀区分大小写
func Convert(value string, to Representation) (string, error) {
	n, err := parse(value)
	if err != nil {
		return "", err
	}

	switch to {
	case Binary:
		return "0b" + strconv.FormatUint(n, 2), nil
	case Octal:
		return "0o" + strconv.FormatUint(n, 8), nil
	case Hexadecimal:
		return "0x" + strconv.FormatUint(n, 16), nil
	default:
		return strconv.FormatUint(n, 10), nil
	}
}

func parse(value string) (uint64, error) {
	digits, base := value, 10
	switch {
	case strings.HasPrefix(value, "0x"):
		digits, base = value[2:], 16
	case strings.HasPrefix(value, "0b"):
		digits, base = value[2:], 2
	case strings.HasPrefix(value, "0o"):
		digits, base = value[2:], 8
	}

	// ParseUint 自己也认前缀和下划线，这里只接受纯数字
	if digits == "" || strings.ContainsAny(digits, "_+-") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
	}
	n, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
	}
	return n, nil
}
