package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/znx3p0/canary/config"
)

// Params 模块输入
type Params struct {
	fx.In

	Config *config.Config

	// Registerer 调用方提供的注册器，缺省使用 prometheus.DefaultRegisterer
	Registerer prometheus.Registerer `name:"metrics_registerer" optional:"true"`
}

// Module 指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(Provide),
	)
}

// Provide 按配置提供指标，禁用时返回 nil
func Provide(p Params) (*Metrics, error) {
	if !p.Config.Metrics.Enable {
		return nil, nil
	}
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return New(p.Config.Metrics.Namespace, reg)
}
