package dial

import (
	"go.uber.org/fx"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/transport"
	"github.com/znx3p0/canary/internal/core/upgrader"
)

// Params 模块输入
type Params struct {
	fx.In

	Config    *config.Config
	Providers *transport.Registry
	Upgrader  *upgrader.Upgrader
}

// Module 拨号模块
func Module() fx.Option {
	return fx.Module("dial",
		fx.Provide(Provide),
	)
}

// ConfigFromUnified 从统一配置创建退避配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return NewConfig()
	}
	d := cfg.Dial
	return Config{
		InitialInterval:     d.InitialInterval.Duration(),
		MaxInterval:         d.MaxInterval.Duration(),
		Multiplier:          d.Multiplier,
		RandomizationFactor: d.RandomizationFactor,
		MaxElapsedTime:      d.MaxElapsedTime.Duration(),
		MaxRetries:          d.MaxRetries,
	}
}

// Provide 提供拨号器
func Provide(p Params) (*Dialer, error) {
	return New(p.Providers, p.Upgrader, ConfigFromUnified(p.Config))
}
