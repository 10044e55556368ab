package upgrader

import (
	"time"

	"github.com/znx3p0/canary/internal/core/framing"
	"github.com/znx3p0/canary/pkg/types"
)

// Config 升级器配置
type Config struct {
	// NegotiateTimeout 协议协商与 hello 交换超时
	NegotiateTimeout time.Duration

	// MaxFrameSize 通道单帧上限
	MaxFrameSize int

	// Accept 入站接受的格式，为空表示全部支持的格式
	Accept []types.Format
}

// NewConfig 创建默认配置
func NewConfig() Config {
	return Config{
		NegotiateTimeout: 10 * time.Second,
		MaxFrameSize:     framing.DefaultMaxFrameSize,
	}
}
