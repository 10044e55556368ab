// Package config 提供统一的配置管理
//
// 主 Config 嵌入各子配置，每个子配置在独立文件中定义，
// 并提供 DefaultXxxConfig() 与 Validate()。
//
//	cfg := config.NewConfig()
//	cfg.Dial.MaxRetries = 3
//
//	cfg, err := config.Load("canary.json")
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config canary 完整配置
type Config struct {
	// Identity 身份
	Identity IdentityConfig `json:"identity"`

	// Security 握手与加密
	Security SecurityConfig `json:"security"`

	// Transport 传输提供者
	Transport TransportConfig `json:"transport"`

	// Dial 建连重试
	Dial DialConfig `json:"dial"`

	// Codec 默认编码
	Codec CodecConfig `json:"codec"`

	// Metrics 指标
	Metrics MetricsConfig `json:"metrics"`

	// Log 日志
	Log LogConfig `json:"log"`
}

// NewConfig 返回默认配置
func NewConfig() *Config {
	return &Config{
		Identity:  DefaultIdentityConfig(),
		Security:  DefaultSecurityConfig(),
		Transport: DefaultTransportConfig(),
		Dial:      DefaultDialConfig(),
		Codec:     DefaultCodecConfig(),
		Metrics:   DefaultMetricsConfig(),
		Log:       DefaultLogConfig(),
	}
}

// FromJSON 从 JSON 创建配置，缺省字段取默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load 从文件加载配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return FromJSON(data)
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Validate 校验全部子配置
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	validators := []interface{ Validate() error }{
		c.Identity, c.Security, c.Transport, c.Dial, c.Codec, c.Metrics, c.Log,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
