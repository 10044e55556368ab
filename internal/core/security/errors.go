package security

import "errors"

var (
	// ErrUnknownProtocol 未注册的安全协议
	ErrUnknownProtocol = errors.New("security: unknown protocol")

	// ErrInsecureDisabled 配置禁止直通会话
	ErrInsecureDisabled = errors.New("security: insecure sessions disabled")
)
