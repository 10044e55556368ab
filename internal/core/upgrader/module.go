package upgrader

import (
	"go.uber.org/fx"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/metrics"
	"github.com/znx3p0/canary/internal/core/security"
)

// Params 模块输入
type Params struct {
	fx.In

	Config     *config.Config
	Transports *security.Transports
	Metrics    *metrics.Metrics `optional:"true"`
}

// Module 升级器模块
func Module() fx.Option {
	return fx.Module("upgrader",
		fx.Provide(Provide),
	)
}

// ConfigFromUnified 从统一配置创建升级器配置
func ConfigFromUnified(cfg *config.Config) Config {
	c := NewConfig()
	if cfg != nil {
		c.NegotiateTimeout = cfg.Security.NegotiateTimeout.Duration()
		c.MaxFrameSize = cfg.Transport.MaxFrameSize
		c.Accept = cfg.Codec.Accepted()
	}
	return c
}

// Provide 提供升级器
func Provide(p Params) (*Upgrader, error) {
	return New(p.Transports, ConfigFromUnified(p.Config), p.Metrics)
}
