package config

import (
	"errors"
	"fmt"

	"github.com/znx3p0/canary/pkg/lib/log"
)

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enable    bool   `json:"enable"`
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enable: true, Namespace: "canary"}
}

// Validate 校验
func (c MetricsConfig) Validate() error {
	if c.Enable && c.Namespace == "" {
		return errors.New("metrics.namespace must not be empty")
	}
	return nil
}

// LogConfig 日志配置
type LogConfig struct {
	// Level debug / info / warn / error
	Level string `json:"level"`

	// FxEvents 是否输出 fx 生命周期事件
	FxEvents bool `json:"fx_events"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "info"}
}

// Validate 校验
func (c LogConfig) Validate() error {
	if _, err := log.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
