package route

import (
	"go.uber.org/fx"

	"github.com/znx3p0/canary/internal/core/metrics"
)

// Params 模块输入
type Params struct {
	fx.In

	// Route 调用方提供的路由，缺省使用 Global()
	Route   *Route           `name:"user_route" optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

// Module 路由模块
func Module() fx.Option {
	return fx.Module("route",
		fx.Provide(Provide),
	)
}

// Provide 提供根路由并挂载指标
func Provide(p Params) *Route {
	r := p.Route
	if r == nil {
		r = Global()
	}
	if p.Metrics != nil {
		r.SetMetrics(p.Metrics)
	}
	return r
}
