// Package unix 提供 unix / iunix 地址类型的原始流
package unix

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/transport/unix")

// Config Unix 套接字配置
type Config struct {
	// DialTimeout 单次拨号超时
	DialTimeout time.Duration
}

// Provider Unix 套接字提供者
type Provider struct {
	cfg Config
}

var _ interfaces.Provider = (*Provider)(nil)

// New 创建提供者
func New(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

// Kinds 返回 unix 与 iunix
func (p *Provider) Kinds() []types.ProviderKind {
	return []types.ProviderKind{types.ProviderUnix, types.ProviderInsecureUnix}
}

// Dial 连接到套接字文件
func (p *Provider) Dial(ctx context.Context, endpoint string) (net.Conn, error) {
	d := &net.Dialer{Timeout: p.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "unix", endpoint)
	if err != nil {
		return nil, fmt.Errorf("unix dial %s: %w", endpoint, err)
	}
	return conn, nil
}

// Listen 在套接字文件上监听
//
// 已存在的陈旧套接字文件会被删除；关闭监听器时删除套接字文件。
func (p *Provider) Listen(ctx context.Context, endpoint string) (interfaces.Listener, error) {
	if err := removeStale(endpoint); err != nil {
		return nil, err
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", endpoint)
	if err != nil {
		return nil, fmt.Errorf("unix listen %s: %w", endpoint, err)
	}
	if ul, ok := ln.(*net.UnixListener); ok {
		ul.SetUnlinkOnClose(true)
	}
	logger.Info("Unix 监听已启动", "endpoint", endpoint)
	return &listener{Listener: ln, endpoint: endpoint}, nil
}

// removeStale 删除无人监听的套接字文件
func removeStale(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("unix listen %s: file exists and is not a socket", path)
	}
	if c, err := net.Dial("unix", path); err == nil {
		_ = c.Close()
		return fmt.Errorf("unix listen %s: address already in use", path)
	}
	return os.Remove(path)
}

type listener struct {
	net.Listener
	endpoint string
}

func (l *listener) Endpoint() string {
	return l.endpoint
}
