package interfaces

import (
	"context"
	"net"

	"github.com/znx3p0/canary/pkg/types"
)

// Provider 原始双工流提供者
type Provider interface {
	// Kinds 返回该提供者处理的地址类型
	Kinds() []types.ProviderKind

	// Dial 打开到端点的原始流
	Dial(ctx context.Context, endpoint string) (net.Conn, error)

	// Listen 在端点上监听
	Listen(ctx context.Context, endpoint string) (Listener, error)
}

// Listener 原始流监听器
type Listener interface {
	// Accept 阻塞直到有新连接或监听器关闭
	Accept() (net.Conn, error)

	// Endpoint 实际绑定的端点（端口 0 时为分配后的端口）
	Endpoint() string

	// Close 关闭监听器
	Close() error
}
