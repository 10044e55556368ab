// Package types 定义 canary 的基础类型
//
// 本文件定义错误分类体系。
package types

import (
	"errors"
	"fmt"
)

// ============================================================================
//                              Kind - 错误类别
// ============================================================================

// Kind 错误类别
//
// 每个通过通道、握手或路由返回的错误都属于且仅属于一个类别，
// 调用方通过 errors.Is(err, types.ErrXxx) 或 KindOf(err) 判断。
type Kind int

const (
	// KindUnknown 未分类
	KindUnknown Kind = iota
	// KindTransport 底层流 I/O 失败，仅在建连阶段可重试
	KindTransport
	// KindHandshake 加密协商失败，致命
	KindHandshake
	// KindTamper 握手后认证失败，通道立即拆除
	KindTamper
	// KindDeserialize 负载无法按协商编码解析
	KindDeserialize
	// KindConflict 注册名称重复
	KindConflict
	// KindNotFound 分发路径不存在
	KindNotFound
	// KindEndOfStream 对端正常关闭
	KindEndOfStream
	// KindCancelled 本端主动取消或关闭
	KindCancelled
	// KindRejected 接收端拒绝请求的编码
	KindRejected
	// KindConsumed 通道句柄已被拆分或降级
	KindConsumed
)

// String 返回类别名称
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindHandshake:
		return "handshake"
	case KindTamper:
		return "tamper"
	case KindDeserialize:
		return "deserialize"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindEndOfStream:
		return "end of stream"
	case KindCancelled:
		return "cancelled"
	case KindRejected:
		return "rejected"
	case KindConsumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              哨兵错误
// ============================================================================

var (
	// ErrTransport 传输错误
	ErrTransport = &Error{Kind: KindTransport}
	// ErrHandshake 握手错误
	ErrHandshake = &Error{Kind: KindHandshake}
	// ErrTamper 篡改错误
	ErrTamper = &Error{Kind: KindTamper}
	// ErrDeserialize 反序列化错误
	ErrDeserialize = &Error{Kind: KindDeserialize}
	// ErrConflict 名称冲突
	ErrConflict = &Error{Kind: KindConflict}
	// ErrNotFound 路径不存在
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrEndOfStream 流结束
	ErrEndOfStream = &Error{Kind: KindEndOfStream}
	// ErrCancelled 已取消
	ErrCancelled = &Error{Kind: KindCancelled}
	// ErrRejected 已拒绝
	ErrRejected = &Error{Kind: KindRejected}
	// ErrConsumed 句柄已消费
	ErrConsumed = &Error{Kind: KindConsumed}
)

// ============================================================================
//                              Error
// ============================================================================

// Error 带类别的错误
type Error struct {
	Kind Kind
	// Op 出错的操作，如 "receive"、"handshake"、"register"
	Op string
	// Err 底层错误，可为 nil
	Err error
}

// NewError 创建分类错误
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf 创建分类错误，底层错误由格式化字符串生成
func Errorf(kind Kind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Error 实现 error 接口
func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Op == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 按类别匹配
//
// 只有不带 Op 与 Err 的哨兵才按类别匹配，其余按指针相等。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Op == "" && t.Err == nil {
		return e.Kind == t.Kind
	}
	return e == t
}

// KindOf 返回错误链中第一个分类错误的类别
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable 是否可在建连阶段重试
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransport
}

// IsTerminal 是否为正常终止（流结束或取消）
//
// 这类结果不计入监控错误。
func IsTerminal(err error) bool {
	switch KindOf(err) {
	case KindEndOfStream, KindCancelled:
		return true
	default:
		return false
	}
}
