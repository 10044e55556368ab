// Package insecure 提供不加密的直通会话
//
// 用于 i 前缀的地址类型。与 noise 实现相同的接口，上层代码不感知差异。
package insecure

import (
	"context"
	"net"

	"github.com/znx3p0/canary/pkg/interfaces"
)

// ProtocolID 协议标识
const ProtocolID = "/canary/plaintext/1.0.0"

// Transport 直通安全传输
type Transport struct {
	localPeer string
}

var _ interfaces.SecureTransport = (*Transport)(nil)

// New 创建直通传输，localPeer 仅用于日志
func New(localPeer string) *Transport {
	return &Transport{localPeer: localPeer}
}

// ID 返回协议标识
func (t *Transport) ID() string { return ProtocolID }

// SecureInbound 不做任何交换
func (t *Transport) SecureInbound(context.Context, net.Conn) (interfaces.Session, error) {
	return &Session{localPeer: t.localPeer}, nil
}

// SecureOutbound 不做任何交换，也无法校验远端身份
func (t *Transport) SecureOutbound(context.Context, net.Conn, string) (interfaces.Session, error) {
	return &Session{localPeer: t.localPeer}, nil
}

// Session 直通会话
type Session struct {
	localPeer string
}

var (
	_ interfaces.Session = (*Session)(nil)
	_ interfaces.Sealer  = passthrough{}
	_ interfaces.Opener  = passthrough{}
)

type passthrough struct{}

func (passthrough) Seal(p []byte) ([]byte, error) { return p, nil }
func (passthrough) Open(p []byte) ([]byte, error) { return p, nil }

// Sealer 原样返回
func (s *Session) Sealer() interfaces.Sealer { return passthrough{} }

// Opener 原样返回
func (s *Session) Opener() interfaces.Opener { return passthrough{} }

// Encrypted 总是 false
func (s *Session) Encrypted() bool { return false }

// Protocol 返回协议标识
func (s *Session) Protocol() string { return ProtocolID }

// LocalPeer 本地身份
func (s *Session) LocalPeer() string { return s.localPeer }

// RemotePeer 直通会话无法得知远端身份
func (s *Session) RemotePeer() string { return "" }
