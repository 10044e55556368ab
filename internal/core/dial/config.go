package dial

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config 重连退避策略
type Config struct {
	// InitialInterval 第一次重试前的等待
	InitialInterval time.Duration

	// MaxInterval 单次等待上限
	MaxInterval time.Duration

	// Multiplier 每次重试的等待增长倍数
	Multiplier float64

	// RandomizationFactor 抖动比例
	RandomizationFactor float64

	// MaxElapsedTime 总耗时上限，0 表示不限
	MaxElapsedTime time.Duration

	// MaxRetries 最大重试次数（不含首次），0 表示不限
	MaxRetries uint64
}

// NewConfig 返回默认配置
func NewConfig() Config {
	return Config{
		InitialInterval:     100 * time.Millisecond,
		MaxInterval:         5 * time.Second,
		Multiplier:          2,
		RandomizationFactor: 0.5,
		MaxElapsedTime:      30 * time.Second,
		MaxRetries:          10,
	}
}

// backOff 按配置构造绑定 ctx 的退避器
func (c Config) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.InitialInterval
	eb.MaxInterval = c.MaxInterval
	eb.Multiplier = c.Multiplier
	eb.RandomizationFactor = c.RandomizationFactor
	eb.MaxElapsedTime = c.MaxElapsedTime
	eb.Reset()

	var b backoff.BackOff = eb
	if c.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, c.MaxRetries)
	}
	return backoff.WithContext(b, ctx)
}
