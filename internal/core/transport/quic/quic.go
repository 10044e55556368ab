// Package quic 提供 quic / iquic 地址类型的原始流
//
// 每次 Dial 建立一条新的 QUIC 连接并打开一条双向流；
// 监听端为每条连接接受第一条流。
package quic

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/transport/quic")

// acceptStreamTimeout 连接建立后等待第一条流的时间
const acceptStreamTimeout = 10 * time.Second

// Config QUIC 配置
type Config struct {
	// MaxIdleTimeout 连接空闲超时
	MaxIdleTimeout time.Duration

	// KeepAlivePeriod keepalive 间隔
	KeepAlivePeriod time.Duration
}

// Provider QUIC 提供者
type Provider struct {
	cfg Config

	tlsOnce sync.Once
	tlsConf *tls.Config
	tlsErr  error
}

var _ interfaces.Provider = (*Provider)(nil)

// New 创建 QUIC 提供者，证书在首次使用时生成
func New(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

// Kinds 返回 quic 与 iquic
func (p *Provider) Kinds() []types.ProviderKind {
	return []types.ProviderKind{types.ProviderQUIC, types.ProviderInsecureQUIC}
}

func (p *Provider) tlsConfig() (*tls.Config, error) {
	p.tlsOnce.Do(func() {
		p.tlsConf, p.tlsErr = generateTLSConfig()
	})
	if p.tlsErr != nil {
		return nil, p.tlsErr
	}
	return p.tlsConf.Clone(), nil
}

func (p *Provider) quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  p.cfg.MaxIdleTimeout,
		KeepAlivePeriod: p.cfg.KeepAlivePeriod,
	}
}

// Dial 建立 QUIC 连接并打开一条流
func (p *Provider) Dial(ctx context.Context, endpoint string) (net.Conn, error) {
	tlsConf, err := p.tlsConfig()
	if err != nil {
		return nil, err
	}

	conn, err := quic.DialAddr(ctx, endpoint, tlsConf, p.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quic dial %s: %w", endpoint, err)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "open stream failed")
		return nil, fmt.Errorf("quic open stream: %w", err)
	}
	return newStreamConn(conn, stream), nil
}

// Listen 在 UDP 端点上监听
func (p *Provider) Listen(_ context.Context, endpoint string) (interfaces.Listener, error) {
	tlsConf, err := p.tlsConfig()
	if err != nil {
		return nil, err
	}

	ql, err := quic.ListenAddr(endpoint, tlsConf, p.quicConfig())
	if err != nil {
		return nil, fmt.Errorf("quic listen %s: %w", endpoint, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &listener{
		ql:       ql,
		incoming: make(chan net.Conn),
		ctx:      ctx,
		cancel:   cancel,
	}
	go l.acceptLoop()

	logger.Info("QUIC 监听已启动", "endpoint", l.Endpoint())
	return l, nil
}

// listener QUIC 监听器
type listener struct {
	ql       *quic.Listener
	incoming chan net.Conn
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once
}

func (l *listener) acceptLoop() {
	for {
		conn, err := l.ql.Accept(l.ctx)
		if err != nil {
			if l.ctx.Err() == nil {
				logger.Debug("QUIC 接受连接失败", "err", err)
			}
			return
		}
		go l.acceptStream(conn)
	}
}

// acceptStream 等待连接上的第一条流
func (l *listener) acceptStream(conn *quic.Conn) {
	ctx, cancel := context.WithTimeout(l.ctx, acceptStreamTimeout)
	defer cancel()

	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "no stream")
		return
	}

	select {
	case l.incoming <- newStreamConn(conn, stream):
	case <-l.ctx.Done():
		_ = conn.CloseWithError(0, "listener closed")
	}
}

func (l *listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.incoming:
		return c, nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *listener) Endpoint() string {
	return l.ql.Addr().String()
}

func (l *listener) Close() error {
	var err error
	l.once.Do(func() {
		l.cancel()
		err = l.ql.Close()
	})
	return err
}
