package config

import (
	"errors"
	"strings"
	"time"
)

// TransportConfig 传输配置
type TransportConfig struct {
	// DialTimeout 单次拨号超时
	DialTimeout Duration `json:"dial_timeout"`

	// KeepAlive TCP keepalive 间隔
	KeepAlive Duration `json:"keep_alive"`

	// MaxFrameSize 单帧最大字节数
	MaxFrameSize int `json:"max_frame_size"`

	// AcceptRate 每秒最多接受的入站连接数，0 表示不限
	AcceptRate float64 `json:"accept_rate"`

	// AcceptBurst 入站突发上限
	AcceptBurst int `json:"accept_burst"`

	// QUIC QUIC 配置
	QUIC QUICConfig `json:"quic"`

	// WebSocket WebSocket 配置
	WebSocket WebSocketConfig `json:"websocket"`
}

// QUICConfig QUIC 配置
type QUICConfig struct {
	MaxIdleTimeout  Duration `json:"max_idle_timeout"`
	KeepAlivePeriod Duration `json:"keep_alive_period"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	// Path 监听端点未带路径时使用的 HTTP 路径
	Path string `json:"path"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		DialTimeout:  Duration(10 * time.Second),
		KeepAlive:    Duration(15 * time.Second),
		MaxFrameSize: 16 << 20,
		AcceptRate:   0,
		AcceptBurst:  64,
		QUIC: QUICConfig{
			MaxIdleTimeout:  Duration(30 * time.Second),
			KeepAlivePeriod: Duration(10 * time.Second),
		},
		WebSocket: WebSocketConfig{
			Path: "/canary",
		},
	}
}

// Validate 校验
func (c TransportConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return errors.New("transport.dial_timeout must be positive")
	}
	if c.MaxFrameSize <= 0 {
		return errors.New("transport.max_frame_size must be positive")
	}
	if c.AcceptRate < 0 {
		return errors.New("transport.accept_rate must not be negative")
	}
	if c.AcceptRate > 0 && c.AcceptBurst <= 0 {
		return errors.New("transport.accept_burst must be positive when accept_rate is set")
	}
	if !strings.HasPrefix(c.WebSocket.Path, "/") {
		return errors.New("transport.websocket.path must start with /")
	}
	return nil
}
