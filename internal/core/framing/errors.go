package framing

import "errors"

var (
	// ErrFrameTooLarge 帧超过最大长度
	ErrFrameTooLarge = errors.New("framing: frame too large")
)
