package canary

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/identity"
	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/types"
)

// Option 节点配置选项
type Option func(*options) error

// options 内部选项
type options struct {
	config *config.Config

	// 调用方直接提供的组件，nil 表示使用模块默认
	route     *Route
	identity  *identity.Identity
	registry  prometheus.Registerer
	memory    *MemoryNetwork
	providers []interfaces.Provider

	// format 出站默认格式，覆盖 config.Codec.Default
	format types.Format

	userFxOptions []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

func (o *options) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	if o.format == types.FormatUnknown {
		o.format = o.config.Codec.Format()
	}
	return nil
}

// WithConfig 使用完整配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return ErrNilConfig
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// WithRoute 设置根路由，缺省使用 GlobalRoute()
func WithRoute(r *Route) Option {
	return func(o *options) error {
		o.route = r
		return nil
	}
}

// WithIdentityKeyFile 从文件加载身份，文件不存在时生成并保存
func WithIdentityKeyFile(path string) Option {
	return func(o *options) error {
		id, err := identity.LoadOrGenerate(path)
		if err != nil {
			return err
		}
		o.identity = id
		return nil
	}
}

// WithIdentitySeed 使用 32 字节 Ed25519 种子作为身份
func WithIdentitySeed(seed []byte) Option {
	return func(o *options) error {
		id, err := identity.FromSeed(seed)
		if err != nil {
			return err
		}
		o.identity = id
		return nil
	}
}

// WithFormat 设置出站默认编码格式
func WithFormat(f Format) Option {
	return func(o *options) error {
		if !f.Valid() {
			return fmt.Errorf("canary: invalid format %s", f)
		}
		o.format = f
		return nil
	}
}

// WithMetricsRegistry 使用指定的 Prometheus 注册器
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registry = reg
		return nil
	}
}

// WithMemoryNetwork 使用独立的进程内网络，缺省为进程级共享网络
func WithMemoryNetwork(n *MemoryNetwork) Option {
	return func(o *options) error {
		o.memory = n
		return nil
	}
}

// WithProvider 追加自定义提供者
func WithProvider(p interfaces.Provider) Option {
	return func(o *options) error {
		o.providers = append(o.providers, p)
		return nil
	}
}

// WithFxOption 追加 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
