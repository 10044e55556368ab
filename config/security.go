package config

import (
	"errors"
	"time"
)

// SecurityConfig 握手与加密配置
type SecurityConfig struct {
	// NegotiateTimeout 安全协议协商超时
	NegotiateTimeout Duration `json:"negotiate_timeout"`

	// HandshakeTimeout Noise 握手超时
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// PreSharedKey 预共享口令，非空时两端必须一致才能完成握手
	PreSharedKey string `json:"pre_shared_key,omitempty"`

	// AllowInsecure 是否接受 i 前缀的直通连接
	AllowInsecure bool `json:"allow_insecure"`
}

// DefaultSecurityConfig 返回默认安全配置
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		NegotiateTimeout: Duration(10 * time.Second),
		HandshakeTimeout: Duration(10 * time.Second),
		AllowInsecure:    true,
	}
}

// Validate 校验
func (c SecurityConfig) Validate() error {
	if c.NegotiateTimeout <= 0 {
		return errors.New("security.negotiate_timeout must be positive")
	}
	if c.HandshakeTimeout <= 0 {
		return errors.New("security.handshake_timeout must be positive")
	}
	return nil
}
