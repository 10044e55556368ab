package types

import (
	"errors"
	"fmt"
	"strings"
)

// PathSeparator 分发路径分隔符
const PathSeparator = "/"

// addrSeparator 端点与路径之间的分隔符
const addrSeparator = "://"

var (
	// ErrInvalidAddress 地址格式无效
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnknownProvider 未知提供者类型
	ErrUnknownProvider = errors.New("unknown provider kind")
)

// ============================================================================
//                              Address
// ============================================================================

// Address 到达某个节点上某个服务的自包含描述
//
// 字符串形式为 "kind@endpoint://path"，路径部分可省略。
// 持有 Address 的任何节点都能独立连接，不依赖其他节点的内存状态。
type Address struct {
	// Provider 提供者类型
	Provider ProviderKind `json:"provider" msgpack:"provider" bson:"provider" cbor:"1,keyasint"`
	// Endpoint 传输层端点，如 "127.0.0.1:7000" 或 "/tmp/canary.sock"
	Endpoint string `json:"endpoint" msgpack:"endpoint" bson:"endpoint" cbor:"2,keyasint"`
	// Path 分发路径，如 "Math/Add"
	Path string `json:"path,omitempty" msgpack:"path,omitempty" bson:"path,omitempty" cbor:"3,keyasint,omitempty"`
}

// NewAddress 创建地址
func NewAddress(provider ProviderKind, endpoint, path string) Address {
	return Address{Provider: provider, Endpoint: endpoint, Path: CleanPath(path)}
}

// ParseAddress 解析 "kind@endpoint://path" 形式的地址
func ParseAddress(s string) (Address, error) {
	kind, rest, ok := strings.Cut(s, "@")
	if !ok || kind == "" || rest == "" {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	addr := Address{Provider: ProviderKind(kind), Endpoint: rest}
	if i := strings.LastIndex(rest, addrSeparator); i >= 0 {
		addr.Endpoint = rest[:i]
		addr.Path = CleanPath(rest[i+len(addrSeparator):])
	}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}
	return addr, nil
}

// MustParseAddress 解析地址，失败时 panic
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// Validate 校验地址
func (a Address) Validate() error {
	if !a.Provider.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, a.Provider)
	}
	if a.Endpoint == "" {
		return fmt.Errorf("%w: empty endpoint", ErrInvalidAddress)
	}
	return nil
}

// String 返回地址的字符串形式
func (a Address) String() string {
	if a.Path == "" {
		return string(a.Provider) + "@" + a.Endpoint
	}
	return string(a.Provider) + "@" + a.Endpoint + addrSeparator + a.Path
}

// IsZero 是否为零值
func (a Address) IsZero() bool {
	return a == Address{}
}

// Secure 是否使用加密会话
func (a Address) Secure() bool {
	return a.Provider.Secure()
}

// WithPath 返回替换路径后的地址
func (a Address) WithPath(path string) Address {
	a.Path = CleanPath(path)
	return a
}

// Join 在路径末尾追加段
func (a Address) Join(segments ...string) Address {
	parts := make([]string, 0, len(segments)+1)
	if a.Path != "" {
		parts = append(parts, a.Path)
	}
	parts = append(parts, segments...)
	return a.WithPath(strings.Join(parts, PathSeparator))
}

// Peer 返回去掉路径的节点地址
func (a Address) Peer() Address {
	a.Path = ""
	return a
}

// ============================================================================
//                              路径工具
// ============================================================================

// CleanPath 去掉多余分隔符
func CleanPath(path string) string {
	return strings.Join(SplitPath(path), PathSeparator)
}

// SplitPath 拆分路径为非空段
func SplitPath(path string) []string {
	raw := strings.Split(path, PathSeparator)
	out := raw[:0]
	for _, seg := range raw {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// HeadPath 拆出第一段和剩余部分
func HeadPath(path string) (head, rest string) {
	path = strings.TrimLeft(path, PathSeparator)
	head, rest, _ = strings.Cut(path, PathSeparator)
	return head, strings.TrimLeft(rest, PathSeparator)
}
