package canary

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/znx3p0/canary/internal/core/dial"
	"github.com/znx3p0/canary/internal/core/identity"
	"github.com/znx3p0/canary/internal/core/metrics"
	"github.com/znx3p0/canary/internal/core/route"
	"github.com/znx3p0/canary/internal/core/security"
	"github.com/znx3p0/canary/internal/core/transport"
	"github.com/znx3p0/canary/internal/core/upgrader"
	"github.com/znx3p0/canary/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//
//	config → identity → metrics → transport → security → upgrader → dial → route
func buildFxApp(o *options, n *Node) (*fx.App, error) {
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),

		identity.Module(),
		metrics.Module(),
		transport.Module(),
		security.Module(),
		upgrader.Module(),
		dial.Module(),
		route.Module(),
	}

	// ════════════════════════════════════════════════════════════════════════
	// 调用方提供的组件
	// ════════════════════════════════════════════════════════════════════════
	if o.identity != nil {
		id := o.identity
		modules = append(modules, fx.Provide(fx.Annotated{
			Name:   "user_identity",
			Target: func() *identity.Identity { return id },
		}))
	}
	if o.route != nil {
		r := o.route
		modules = append(modules, fx.Provide(fx.Annotated{
			Name:   "user_route",
			Target: func() *route.Route { return r },
		}))
	}
	if o.registry != nil {
		reg := o.registry
		modules = append(modules, fx.Provide(fx.Annotated{
			Name:   "metrics_registerer",
			Target: func() prometheus.Registerer { return reg },
		}))
	}
	if o.memory != nil {
		modules = append(modules, fx.Supply(o.memory))
	}
	for _, p := range o.providers {
		p := p
		modules = append(modules, fx.Provide(fx.Annotated{
			Group:  "providers",
			Target: func() interfaces.Provider { return p },
		}))
	}

	modules = append(modules, o.userFxOptions...)

	// ════════════════════════════════════════════════════════════════════════
	// Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		fx.Populate(&n.identity, &n.metrics, &n.providers, &n.upgrader, &n.dialer, &n.route),
		fx.WithLogger(fxLogger(o)),
	)

	return fx.New(modules...), nil
}

// fxLogger Fx 事件日志，缺省丢弃
func fxLogger(o *options) func() fxevent.Logger {
	return func() fxevent.Logger {
		if !o.config.Log.FxEvents {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		l, err := zap.NewDevelopment()
		if err != nil {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}
		return &fxevent.ZapLogger{Logger: l}
	}
}
