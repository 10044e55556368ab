package codec

import "errors"

var (
	// ErrUnsupportedFormat 不支持的编码格式
	ErrUnsupportedFormat = errors.New("codec: unsupported format")

	// ErrNilTarget 解码目标为 nil
	ErrNilTarget = errors.New("codec: nil decode target")
)
