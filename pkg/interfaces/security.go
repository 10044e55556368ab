package interfaces

import (
	"context"
	"net"
)

// Sealer 发送方向的加密状态
type Sealer interface {
	// Seal 加密一帧负载，每次调用推进会话计数器
	Seal(plaintext []byte) ([]byte, error)
}

// Opener 接收方向的解密状态
type Opener interface {
	// Open 解密一帧负载，认证失败返回 Tamper 错误
	Open(ciphertext []byte) ([]byte, error)
}

// EncryptedTransport 加密传输能力
//
// 两个方向的状态相互独立，通道拆分后各半边各持一个。
type EncryptedTransport interface {
	Sealer() Sealer
	Opener() Opener

	// Encrypted 是否真正加密
	Encrypted() bool
}

// Session 握手完成后的会话
type Session interface {
	EncryptedTransport

	// Protocol 安全协议标识
	Protocol() string

	// LocalPeer 本地身份标识
	LocalPeer() string

	// RemotePeer 远端身份标识，直通会话为空
	RemotePeer() string
}

// SecureTransport 安全握手协议
type SecureTransport interface {
	// ID 协议标识，用于 multistream 协商
	ID() string

	// SecureInbound 作为响应方完成握手
	SecureInbound(ctx context.Context, conn net.Conn) (Session, error)

	// SecureOutbound 作为发起方完成握手
	//
	// expectedPeer 非空时要求远端身份与之一致。
	SecureOutbound(ctx context.Context, conn net.Conn, expectedPeer string) (Session, error)
}
