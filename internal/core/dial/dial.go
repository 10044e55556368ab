package dial

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/znx3p0/canary/internal/core/channel"
	"github.com/znx3p0/canary/internal/core/transport"
	"github.com/znx3p0/canary/internal/core/upgrader"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/dial")

// Dialer 出站通道拨号器
type Dialer struct {
	providers *transport.Registry
	upgrader  *upgrader.Upgrader
	cfg       Config
}

// New 创建拨号器
func New(providers *transport.Registry, up *upgrader.Upgrader, cfg Config) (*Dialer, error) {
	if providers == nil {
		return nil, ErrNilRegistry
	}
	if up == nil {
		return nil, ErrNilUpgrader
	}
	def := NewConfig()
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = cfg.InitialInterval
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = def.Multiplier
	}
	return &Dialer{providers: providers, upgrader: up, cfg: cfg}, nil
}

// Option 单次连接选项
type Option func(*options)

type options struct {
	expectedPeer string
}

// WithExpectedPeer 要求对端身份与 id 一致
func WithExpectedPeer(id string) Option {
	return func(o *options) { o.expectedPeer = id }
}

func apply(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Connect 连接 addr 指向的服务，Transport 类失败按退避策略重试
func (d *Dialer) Connect(ctx context.Context, addr types.Address, format types.Format, opts ...Option) (*channel.Channel, error) {
	o := apply(opts)

	var (
		ch       *channel.Channel
		attempts int
	)
	op := func() error {
		attempts++
		c, err := d.attempt(ctx, addr, format, o)
		if err != nil {
			if !types.IsRetryable(err) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		ch = c
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Debug("连接失败，等待重试", "address", addr.String(), "attempt", attempts, "next", next, "err", err)
	}

	if err := backoff.RetryNotify(op, d.cfg.backOff(ctx), notify); err != nil {
		err = cancelled(err)
		logger.Debug("连接放弃", "address", addr.String(), "attempts", attempts, "err", err)
		return nil, err
	}
	return ch, nil
}

// ConnectOnce 只尝试一次，不重试
func (d *Dialer) ConnectOnce(ctx context.Context, addr types.Address, format types.Format, opts ...Option) (*channel.Channel, error) {
	ch, err := d.attempt(ctx, addr, format, apply(opts))
	if err != nil {
		return nil, cancelled(err)
	}
	return ch, nil
}

// attempt 打开原始流并升级
func (d *Dialer) attempt(ctx context.Context, addr types.Address, format types.Format, o options) (*channel.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.NewError(types.KindCancelled, "dial", err)
	}

	p, err := d.providers.For(addr.Provider)
	if err != nil {
		return nil, types.NewError(types.KindRejected, "dial", err)
	}

	conn, err := p.Dial(ctx, addr.Endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.NewError(types.KindCancelled, "dial", err)
		}
		return nil, types.NewError(types.KindTransport, "dial", err)
	}

	return d.upgrader.Outbound(ctx, conn, addr, format, o.expectedPeer)
}

// cancelled 将退避器返回的裸 context 错误归入 Cancelled
func cancelled(err error) error {
	if types.KindOf(err) != types.KindUnknown {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return types.NewError(types.KindCancelled, "dial", err)
	}
	return err
}
