// Package memory 提供进程内命名网络
//
// 端点是任意名称。Dial 通过 net.Pipe 创建一对连接，把服务端一侧
// 交给同名监听器的 Accept。同一进程内的多个节点共享 Default() 网络。
package memory

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/types"
)

var (
	// ErrAddressInUse 名称已被监听
	ErrAddressInUse = errors.New("memory: address in use")

	// ErrConnectionRefused 名称无人监听
	ErrConnectionRefused = errors.New("memory: connection refused")
)

var (
	defaultOnce    sync.Once
	defaultNetwork *Network
)

// Default 返回进程级共享网络
func Default() *Network {
	defaultOnce.Do(func() {
		defaultNetwork = NewNetwork()
	})
	return defaultNetwork
}

// Network 进程内网络
type Network struct {
	mu        sync.Mutex
	listeners map[string]*Listener
}

var _ interfaces.Provider = (*Network)(nil)

// NewNetwork 创建隔离的进程内网络
func NewNetwork() *Network {
	return &Network{listeners: make(map[string]*Listener)}
}

// Kinds 返回 mem 与 imem
func (n *Network) Kinds() []types.ProviderKind {
	return []types.ProviderKind{types.ProviderMemory, types.ProviderInsecureMem}
}

// Listen 以 endpoint 为名监听，空名称分配一个随机名称
func (n *Network) Listen(_ context.Context, endpoint string) (interfaces.Listener, error) {
	if endpoint == "" {
		endpoint = uuid.NewString()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, exists := n.listeners[endpoint]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAddressInUse, endpoint)
	}
	l := &Listener{
		net:      n,
		name:     endpoint,
		incoming: make(chan net.Conn),
		done:     make(chan struct{}),
	}
	n.listeners[endpoint] = l
	return l, nil
}

// Dial 连接到同名监听器
func (n *Network) Dial(ctx context.Context, endpoint string) (net.Conn, error) {
	n.mu.Lock()
	l, ok := n.listeners[endpoint]
	n.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, endpoint)
	}

	client, server := net.Pipe()
	select {
	case l.incoming <- &conn{Conn: server, local: addr(endpoint), remote: addr("client-" + uuid.NewString()[:8])}:
		return &conn{Conn: client, local: addr("client"), remote: addr(endpoint)}, nil
	case <-l.done:
		_ = client.Close()
		_ = server.Close()
		return nil, fmt.Errorf("%w: %s", ErrConnectionRefused, endpoint)
	case <-ctx.Done():
		_ = client.Close()
		_ = server.Close()
		return nil, ctx.Err()
	}
}

func (n *Network) remove(name string, l *Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners[name] == l {
		delete(n.listeners, name)
	}
}

// Listener 进程内监听器
type Listener struct {
	net      *Network
	name     string
	incoming chan net.Conn
	done     chan struct{}
	closed   atomic.Bool
}

var _ interfaces.Listener = (*Listener)(nil)

// Accept 等待下一个连接
func (l *Listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.incoming:
		return c, nil
	case <-l.done:
		return nil, net.ErrClosed
	}
}

// Endpoint 返回监听名称
func (l *Listener) Endpoint() string {
	return l.name
}

// Close 停止监听并释放名称
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil
	}
	close(l.done)
	l.net.remove(l.name, l)
	return nil
}

// addr 进程内地址
type addr string

func (a addr) Network() string { return "memory" }
func (a addr) String() string  { return string(a) }

// conn 带名称地址的 net.Pipe 端点
type conn struct {
	net.Conn
	local, remote net.Addr
}

func (c *conn) LocalAddr() net.Addr  { return c.local }
func (c *conn) RemoteAddr() net.Addr { return c.remote }
