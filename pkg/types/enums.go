package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              Direction - 通道方向
// ============================================================================

// Direction 通道方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站（由监听端接受）
	DirInbound
	// DirOutbound 出站（由本端发起）
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              Format - 序列化标签
// ============================================================================

// Format 序列化格式标签
//
// 每个通道在建立时协商一次，生命周期内不变。
type Format uint8

const (
	// FormatUnknown 未知格式
	FormatUnknown Format = 0
	// FormatBincode 默认二进制格式
	FormatBincode Format = 1
	// FormatJSON JSON
	FormatJSON Format = 2
	// FormatBSON BSON
	FormatBSON Format = 3
	// FormatPostcard 紧凑二进制格式
	FormatPostcard Format = 4
	// FormatMessagePack MessagePack
	FormatMessagePack Format = 5
)

// DefaultFormat 默认格式
const DefaultFormat = FormatBincode

// String 返回格式名称
func (f Format) String() string {
	switch f {
	case FormatBincode:
		return "bincode"
	case FormatJSON:
		return "json"
	case FormatBSON:
		return "bson"
	case FormatPostcard:
		return "postcard"
	case FormatMessagePack:
		return "msgpack"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// Valid 是否为已知格式
func (f Format) Valid() bool {
	return f >= FormatBincode && f <= FormatMessagePack
}

// ParseFormat 解析格式名称（大小写不敏感）
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bincode", "binary", "default":
		return FormatBincode, nil
	case "json":
		return FormatJSON, nil
	case "bson":
		return FormatBSON, nil
	case "postcard":
		return FormatPostcard, nil
	case "msgpack", "messagepack":
		return FormatMessagePack, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown format %q", s)
	}
}

// ============================================================================
//                              ProviderKind - 提供者类型
// ============================================================================

// ProviderKind 传输提供者类型
//
// 带 "i" 前缀的类型表示不加密的直通会话。
type ProviderKind string

const (
	ProviderTCP          ProviderKind = "tcp"
	ProviderInsecureTCP  ProviderKind = "itcp"
	ProviderUnix         ProviderKind = "unix"
	ProviderInsecureUnix ProviderKind = "iunix"
	ProviderQUIC         ProviderKind = "quic"
	ProviderInsecureQUIC ProviderKind = "iquic"
	ProviderWS           ProviderKind = "ws"
	ProviderInsecureWS   ProviderKind = "iws"
	ProviderMemory       ProviderKind = "mem"
	ProviderInsecureMem  ProviderKind = "imem"
)

var providerKinds = []ProviderKind{
	ProviderTCP, ProviderInsecureTCP,
	ProviderUnix, ProviderInsecureUnix,
	ProviderQUIC, ProviderInsecureQUIC,
	ProviderWS, ProviderInsecureWS,
	ProviderMemory, ProviderInsecureMem,
}

// ProviderKinds 返回所有已知提供者类型
func ProviderKinds() []ProviderKind {
	out := make([]ProviderKind, len(providerKinds))
	copy(out, providerKinds)
	return out
}

// Valid 是否为已知类型
func (k ProviderKind) Valid() bool {
	for _, known := range providerKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Secure 是否使用加密会话
func (k ProviderKind) Secure() bool {
	return !strings.HasPrefix(string(k), "i")
}

// Base 返回去掉安全前缀后的传输名（tcp、unix、quic、ws、mem）
func (k ProviderKind) Base() ProviderKind {
	if k.Secure() {
		return k
	}
	return k[1:]
}

// WithSecurity 返回指定安全模式下的同类传输
func (k ProviderKind) WithSecurity(secure bool) ProviderKind {
	base := k.Base()
	if secure {
		return base
	}
	return "i" + base
}

// String 返回类型名
func (k ProviderKind) String() string {
	return string(k)
}
