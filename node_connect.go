package canary

import (
	"context"

	"github.com/znx3p0/canary/internal/core/dial"
	"github.com/znx3p0/canary/pkg/types"
)

// ConnectOption 单次连接选项
type ConnectOption func(*connectOptions)

type connectOptions struct {
	format    Format
	peer      string
	noBackoff bool
}

// WithConnectFormat 本次连接使用的编码格式
func WithConnectFormat(f Format) ConnectOption {
	return func(o *connectOptions) { o.format = f }
}

// WithPeer 要求对端身份为 id
func WithPeer(id string) ConnectOption {
	return func(o *connectOptions) { o.peer = id }
}

// WithoutBackoff 只尝试一次，不重试
func WithoutBackoff() ConnectOption {
	return func(o *connectOptions) { o.noBackoff = true }
}

// Connect 连接 addr 指向的服务
//
// 返回的通道已收到对端的 Found。传输层失败按配置退避重试，
// 握手、拒绝、未找到等失败立即返回。
func (n *Node) Connect(ctx context.Context, addr Address, opts ...ConnectOption) (*Channel, error) {
	if n.State() != StateRunning {
		return nil, ErrNodeClosed
	}
	if err := addr.Validate(); err != nil {
		return nil, types.NewError(types.KindRejected, "connect", err)
	}

	o := connectOptions{format: n.opts.format}
	for _, opt := range opts {
		opt(&o)
	}

	var dopts []dial.Option
	if o.peer != "" {
		dopts = append(dopts, dial.WithExpectedPeer(o.peer))
	}

	if o.noBackoff {
		return n.dialer.ConnectOnce(ctx, addr, o.format, dopts...)
	}
	return n.dialer.Connect(ctx, addr, o.format, dopts...)
}

// ConnectString 解析地址字符串后连接
func (n *Node) ConnectString(ctx context.Context, addr string, opts ...ConnectOption) (*Channel, error) {
	a, err := ParseAddress(addr)
	if err != nil {
		return nil, types.NewError(types.KindRejected, "connect", err)
	}
	return n.Connect(ctx, a, opts...)
}
