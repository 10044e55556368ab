// Package tcp 提供 tcp / itcp 地址类型的原始流
package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/transport/tcp")

// Config TCP 配置
type Config struct {
	// DialTimeout 单次拨号超时
	DialTimeout time.Duration

	// KeepAlive keepalive 间隔，0 使用系统默认
	KeepAlive time.Duration
}

// Provider TCP 提供者
type Provider struct {
	cfg Config
}

var _ interfaces.Provider = (*Provider)(nil)

// New 创建 TCP 提供者
func New(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

// Kinds 返回 tcp 与 itcp
func (p *Provider) Kinds() []types.ProviderKind {
	return []types.ProviderKind{types.ProviderTCP, types.ProviderInsecureTCP}
}

// Dial 建立出站连接
func (p *Provider) Dial(ctx context.Context, endpoint string) (net.Conn, error) {
	d := &net.Dialer{
		Timeout:   p.cfg.DialTimeout,
		KeepAlive: p.cfg.KeepAlive,
	}
	conn, err := d.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("tcp dial %s: %w", endpoint, err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

// Listen 在端点上监听
func (p *Provider) Listen(ctx context.Context, endpoint string) (interfaces.Listener, error) {
	lc := net.ListenConfig{KeepAlive: p.cfg.KeepAlive}
	ln, err := lc.Listen(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", endpoint, err)
	}
	logger.Info("TCP 监听已启动", "endpoint", ln.Addr().String())
	return &listener{Listener: ln}, nil
}

// listener 包装 net.Listener
type listener struct {
	net.Listener
}

func (l *listener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
	return conn, nil
}

func (l *listener) Endpoint() string {
	return l.Addr().String()
}
