package config

import (
	"fmt"

	"github.com/znx3p0/canary/pkg/types"
)

// CodecConfig 编码配置
type CodecConfig struct {
	// Default 未显式指定时使用的格式
	// 可选值: bincode, json, bson, postcard, msgpack
	Default string `json:"default"`

	// Accept 入站时接受的格式，为空表示全部支持的格式
	Accept []string `json:"accept,omitempty"`
}

// DefaultCodecConfig 返回默认编码配置
func DefaultCodecConfig() CodecConfig {
	return CodecConfig{Default: types.DefaultFormat.String()}
}

// Format 返回解析后的格式
func (c CodecConfig) Format() types.Format {
	f, err := types.ParseFormat(c.Default)
	if err != nil {
		return types.DefaultFormat
	}
	return f
}

// Accepted 返回入站接受的格式，nil 表示不限
func (c CodecConfig) Accepted() []types.Format {
	if len(c.Accept) == 0 {
		return nil
	}
	out := make([]types.Format, 0, len(c.Accept))
	for _, name := range c.Accept {
		if f, err := types.ParseFormat(name); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// Validate 校验
func (c CodecConfig) Validate() error {
	if _, err := types.ParseFormat(c.Default); err != nil {
		return fmt.Errorf("codec.default: %w", err)
	}
	for _, name := range c.Accept {
		if _, err := types.ParseFormat(name); err != nil {
			return fmt.Errorf("codec.accept: %w", err)
		}
	}
	return nil
}
