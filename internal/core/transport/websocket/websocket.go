// Package websocket 提供 ws / iws 地址类型的原始流
//
// 端点形如 host:port/path，缺省路径取配置。加密由上层 Noise 完成，
// 这里始终使用 ws:// 明文 HTTP 升级。
package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/transport/websocket")

// DefaultPath 缺省 HTTP 路径
const DefaultPath = "/canary"

// Config WebSocket 配置
type Config struct {
	// Path 端点未带路径时使用的 HTTP 路径
	Path string

	// HandshakeTimeout HTTP 升级超时
	HandshakeTimeout time.Duration

	// MaxMessageSize 单条消息上限，0 表示不限
	MaxMessageSize int64
}

// Provider WebSocket 提供者
type Provider struct {
	cfg Config
}

var _ interfaces.Provider = (*Provider)(nil)

// New 创建提供者
func New(cfg Config) *Provider {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	return &Provider{cfg: cfg}
}

// Kinds 返回 ws 与 iws
func (p *Provider) Kinds() []types.ProviderKind {
	return []types.ProviderKind{types.ProviderWS, types.ProviderInsecureWS}
}

// splitEndpoint 拆分 host:port 与 HTTP 路径
func (p *Provider) splitEndpoint(endpoint string) (host, path string) {
	host, path, ok := strings.Cut(endpoint, "/")
	if !ok || path == "" {
		return host, p.cfg.Path
	}
	return host, "/" + path
}

// Dial 发起 WebSocket 升级
func (p *Provider) Dial(ctx context.Context, endpoint string) (net.Conn, error) {
	host, path := p.splitEndpoint(endpoint)
	d := websocket.Dialer{HandshakeTimeout: p.cfg.HandshakeTimeout}

	ws, resp, err := d.DialContext(ctx, "ws://"+host+path, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("ws dial %s: %w", endpoint, err)
	}
	return newConn(ws, p.cfg.MaxMessageSize), nil
}

// Listen 启动 HTTP 服务并在路径上接受升级
func (p *Provider) Listen(ctx context.Context, endpoint string) (interfaces.Listener, error) {
	host, path := p.splitEndpoint(endpoint)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("ws listen %s: %w", endpoint, err)
	}

	l := &listener{
		path:     path,
		tcp:      ln,
		incoming: make(chan net.Conn),
		done:     make(chan struct{}),
		limit:    p.cfg.MaxMessageSize,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: p.cfg.HandshakeTimeout,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, l.handle)
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("WebSocket 服务退出", "endpoint", l.Endpoint(), "err", err)
		}
	}()

	logger.Info("WebSocket 监听已启动", "endpoint", l.Endpoint())
	return l, nil
}

// listener WebSocket 监听器
type listener struct {
	path     string
	tcp      net.Listener
	server   *http.Server
	upgrader websocket.Upgrader
	limit    int64

	incoming chan net.Conn
	done     chan struct{}
	once     sync.Once
}

// handle 升级请求并交给 Accept
func (l *listener) handle(w http.ResponseWriter, r *http.Request) {
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WebSocket 升级失败", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newConn(ws, l.limit)
	select {
	case l.incoming <- c:
	case <-l.done:
		_ = c.Close()
	}
}

func (l *listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.incoming:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

func (l *listener) Endpoint() string {
	return l.tcp.Addr().String() + l.path
}

func (l *listener) Close() error {
	var err error
	l.once.Do(func() {
		close(l.done)
		err = l.server.Close()
	})
	return err
}
