package canary

import (
	"errors"

	"github.com/znx3p0/canary/pkg/types"
)

var (
	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("canary: node closed")

	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("canary: nil config")
)

// 错误类别，用 errors.Is 匹配
var (
	ErrTransport   = types.ErrTransport
	ErrHandshake   = types.ErrHandshake
	ErrTamper      = types.ErrTamper
	ErrDeserialize = types.ErrDeserialize
	ErrConflict    = types.ErrConflict
	ErrNotFound    = types.ErrNotFound
	ErrEndOfStream = types.ErrEndOfStream
	ErrCancelled   = types.ErrCancelled
	ErrRejected    = types.ErrRejected
	ErrConsumed    = types.ErrConsumed
)
