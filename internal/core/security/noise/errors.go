package noise

import "errors"

var (
	// ErrPeerMismatch 远端身份与期望不一致
	ErrPeerMismatch = errors.New("noise: peer identity mismatch")

	// ErrInvalidPayload 握手负载无效
	ErrInvalidPayload = errors.New("noise: invalid handshake payload")

	// ErrInvalidSignature 静态密钥未被身份密钥签名
	ErrInvalidSignature = errors.New("noise: static key not bound to identity key")

	// ErrInvalidPSK 预共享密钥长度无效
	ErrInvalidPSK = errors.New("noise: pre-shared key must be 32 bytes")

	// ErrNilIdentity 未提供身份
	ErrNilIdentity = errors.New("noise: identity is nil")
)
