package canary

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/types"
)

// acceptRetryDelay 非关闭类 Accept 错误后的等待
const acceptRetryDelay = 50 * time.Millisecond

// binding 一个已绑定的监听器
type binding struct {
	addr     types.Address
	listener interfaces.Listener
	limiter  *rate.Limiter

	once sync.Once
	err  error
}

func (b *binding) close() error {
	b.once.Do(func() {
		b.err = b.listener.Close()
	})
	return b.err
}

// ════════════════════════════════════════════════════════════════════════════
//                              绑定
// ════════════════════════════════════════════════════════════════════════════

// Bind 在 addr 上监听并把入站通道交给根路由
//
// addr 的路径部分被忽略。返回实际绑定的地址（端口 0 时为分配后的端口），
// 可用 AddressFor 拼接服务路径后交给对端。
func (n *Node) Bind(ctx context.Context, addr Address) (Address, error) {
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}

	n.mu.Lock()
	closed := n.state != StateRunning
	n.mu.Unlock()
	if closed {
		return Address{}, ErrNodeClosed
	}

	p, err := n.providers.For(addr.Provider)
	if err != nil {
		return Address{}, types.NewError(types.KindRejected, "bind", err)
	}
	ln, err := p.Listen(ctx, addr.Endpoint)
	if err != nil {
		return Address{}, types.NewError(types.KindTransport, "bind", err)
	}

	b := &binding{
		addr:     types.NewAddress(addr.Provider, ln.Endpoint(), ""),
		listener: ln,
		limiter:  n.acceptLimiter(),
	}

	n.mu.Lock()
	if n.state != StateRunning {
		n.mu.Unlock()
		_ = ln.Close()
		return Address{}, ErrNodeClosed
	}
	n.bindings = append(n.bindings, b)
	n.wg.Add(1)
	n.mu.Unlock()

	go n.acceptLoop(b)

	logger.Info("已绑定地址", "address", b.addr.String())
	return b.addr, nil
}

// Bound 返回所有已绑定的地址
func (n *Node) Bound() []Address {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Address, 0, len(n.bindings))
	for _, b := range n.bindings {
		out = append(out, b.addr)
	}
	return out
}

// AddressFor 返回 bound 上 path 服务的地址
//
// 服务把它发送给对端后，对端可以直接连接，不再经过当前通道。
func AddressFor(bound Address, path string) Address {
	return bound.WithPath(path)
}

// acceptLimiter 按配置创建接受速率限制，未配置时返回 nil
func (n *Node) acceptLimiter() *rate.Limiter {
	tc := n.opts.config.Transport
	if tc.AcceptRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(tc.AcceptRate), tc.AcceptBurst)
}

// acceptLoop 接受原始连接，每个连接在独立 goroutine 中升级并分发
func (n *Node) acceptLoop(b *binding) {
	defer n.wg.Done()

	for {
		if b.limiter != nil {
			if err := b.limiter.Wait(n.ctx); err != nil {
				return
			}
		}

		conn, err := b.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || n.ctx.Err() != nil {
				logger.Debug("接受循环退出", "address", b.addr.String())
				return
			}
			logger.Warn("接受连接失败", "address", b.addr.String(), "err", err)
			select {
			case <-n.ctx.Done():
				return
			case <-time.After(acceptRetryDelay):
			}
			continue
		}

		n.wg.Add(1)
		go n.handleInbound(b, conn)
	}
}

// handleInbound 升级入站连接并交给根路由
func (n *Node) handleInbound(b *binding, conn net.Conn) {
	defer n.wg.Done()

	acc, err := n.upgrader.Inbound(n.ctx, conn, b.addr.Provider)
	if err != nil {
		logger.Debug("入站升级失败", "address", b.addr.String(), "remote", conn.RemoteAddr(), "err", err)
		return
	}

	if err := n.route.Dispatch(n.ctx, acc.Path, acc.Channel); err != nil {
		logger.Debug("入站分发失败", "path", acc.Path, "err", err)
	}
}
