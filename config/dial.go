package config

import (
	"errors"
	"time"
)

// DialConfig 建连重试策略（指数退避）
//
// 只有传输层失败（如连接被拒绝）会重试；握手、编码拒绝、路径不存在直接返回。
type DialConfig struct {
	InitialInterval     Duration `json:"initial_interval"`
	MaxInterval         Duration `json:"max_interval"`
	Multiplier          float64  `json:"multiplier"`
	RandomizationFactor float64  `json:"randomization_factor"`

	// MaxElapsedTime 总重试时长上限，0 表示不限
	MaxElapsedTime Duration `json:"max_elapsed_time"`

	// MaxRetries 最大重试次数，0 表示不限
	MaxRetries uint64 `json:"max_retries"`
}

// DefaultDialConfig 返回默认重试策略
func DefaultDialConfig() DialConfig {
	return DialConfig{
		InitialInterval:     Duration(100 * time.Millisecond),
		MaxInterval:         Duration(5 * time.Second),
		Multiplier:          2,
		RandomizationFactor: 0.5,
		MaxElapsedTime:      Duration(30 * time.Second),
		MaxRetries:          10,
	}
}

// Validate 校验
func (c DialConfig) Validate() error {
	if c.InitialInterval <= 0 {
		return errors.New("dial.initial_interval must be positive")
	}
	if c.MaxInterval < c.InitialInterval {
		return errors.New("dial.max_interval must not be less than initial_interval")
	}
	if c.Multiplier < 1 {
		return errors.New("dial.multiplier must be >= 1")
	}
	if c.RandomizationFactor < 0 || c.RandomizationFactor > 1 {
		return errors.New("dial.randomization_factor must be in [0, 1]")
	}
	return nil
}
