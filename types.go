package canary

import (
	"context"

	"github.com/znx3p0/canary/internal/core/channel"
	"github.com/znx3p0/canary/internal/core/route"
	"github.com/znx3p0/canary/internal/core/transport/memory"
	"github.com/znx3p0/canary/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Channel 带编码格式的双向通道
	Channel = channel.Channel

	// SendChannel 通道的发送半边
	SendChannel = channel.SendChannel

	// ReceiveChannel 通道的接收半边
	ReceiveChannel = channel.ReceiveChannel

	// UnformattedChannel 收发原始帧的通道
	UnformattedChannel = channel.UnformattedChannel

	// ChannelInfo 通道元信息
	ChannelInfo = channel.Info

	// Route 路由节点
	Route = route.Route

	// Service 服务函数，返回后通道被关闭
	Service = route.Service

	// RouteContext 服务执行上下文
	RouteContext = route.Ctx

	// Address 形如 kind@endpoint://path 的地址
	Address = types.Address

	// Format 编码格式
	Format = types.Format

	// ProviderKind 地址类型
	ProviderKind = types.ProviderKind

	// Status 分发结果
	Status = types.Status

	// MemoryNetwork 进程内网络，mem / imem 地址使用
	MemoryNetwork = memory.Network
)

// 编码格式
const (
	FormatBincode     = types.FormatBincode
	FormatJSON        = types.FormatJSON
	FormatBSON        = types.FormatBSON
	FormatPostcard    = types.FormatPostcard
	FormatMessagePack = types.FormatMessagePack
)

// NewRoute 创建空路由
func NewRoute(name string) *Route {
	return route.New(name)
}

// GlobalRoute 返回进程级默认路由
func GlobalRoute() *Route {
	return route.Global()
}

// RouteFromContext 返回服务执行上下文
func RouteFromContext(ctx context.Context) (RouteContext, bool) {
	return route.FromContext(ctx)
}

// NewMemoryNetwork 创建独立的进程内网络
func NewMemoryNetwork() *MemoryNetwork {
	return memory.NewNetwork()
}

// ParseAddress 解析地址字符串
func ParseAddress(s string) (Address, error) {
	return types.ParseAddress(s)
}

// MustParseAddress 解析地址字符串，失败时 panic
func MustParseAddress(s string) Address {
	return types.MustParseAddress(s)
}

// ParseFormat 解析格式名称
func ParseFormat(s string) (Format, error) {
	return types.ParseFormat(s)
}

// Receive 从通道接收一个 T 类型的值
func Receive[T any](r channel.Receiver) (T, error) {
	return channel.Receive[T](r)
}

// Pipe 返回一对相连的进程内明文通道
func Pipe(format Format) (*Channel, *Channel, error) {
	return channel.Pipe(format)
}

// Shared 服务间共享的元数据
type Shared[M any] = route.Shared[M]

// NewShared 创建共享元数据
func NewShared[M any](v M) *Shared[M] {
	return route.NewShared(v)
}

// Register 在 r 上注册携带共享元数据的服务
func Register[M any](r *Route, name string, meta *Shared[M], fn func(context.Context, *Shared[M], *Channel) error) error {
	return route.Register(r, name, meta, fn)
}
