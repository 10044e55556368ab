package canary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/dial"
	"github.com/znx3p0/canary/internal/core/identity"
	"github.com/znx3p0/canary/internal/core/metrics"
	"github.com/znx3p0/canary/internal/core/route"
	"github.com/znx3p0/canary/internal/core/transport"
	"github.com/znx3p0/canary/internal/core/upgrader"
	"github.com/znx3p0/canary/pkg/lib/log"
)

var logger = log.Logger("canary")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateRunning 运行中
	StateRunning NodeState = iota

	// StateStopping 停止中
	StateStopping

	// StateStopped 已停止，不能再次启动
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// stopTimeout Fx App 停止超时
	stopTimeout = 10 * time.Second
)

// Node canary 节点
//
// Node 聚合身份、传输、安全握手、拨号与路由。入站通道按 hello 中的路径
// 交给根路由分发；出站通道由 Connect 建立。
//
//	node, err := canary.New(ctx, canary.WithRoute(r))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
type Node struct {
	opts *options
	app  *fx.App

	// 由 Fx 注入
	identity  *identity.Identity
	metrics   *metrics.Metrics
	providers *transport.Registry
	upgrader  *upgrader.Upgrader
	dialer    *dial.Dialer
	route     *route.Route

	// ctx 所有接受循环与服务的父 context，Close 时取消
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	state    NodeState
	bindings []*binding
}

// New 创建并启动节点
func New(ctx context.Context, opts ...Option) (*Node, error) {
	o := newOptions()
	if err := o.apply(opts); err != nil {
		return nil, err
	}

	n := &Node{opts: o}
	app, err := buildFxApp(o, n)
	if err != nil {
		return nil, err
	}
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("build node: %w", err)
	}
	n.app = app

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}

	n.ctx, n.cancel = context.WithCancel(context.Background())
	logger.Info("节点已启动", "id", log.TruncateID(n.identity.ID(), 8), "format", o.format.String())
	return n, nil
}

// ID 返回节点身份标识（base58 公钥）
func (n *Node) ID() string {
	return n.identity.ID()
}

// Route 返回根路由
func (n *Node) Route() *Route {
	return n.route
}

// Format 返回出站默认编码格式
func (n *Node) Format() Format {
	return n.opts.format
}

// Config 返回节点配置
func (n *Node) Config() *config.Config {
	return n.opts.config
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Close 关闭所有监听器，等待接受循环退出后停止组件
//
// 正在执行的服务收到 context 取消，Close 不等待它们结束。
// 可以多次调用。
func (n *Node) Close() error {
	n.mu.Lock()
	if n.state != StateRunning {
		n.mu.Unlock()
		return nil
	}
	n.state = StateStopping
	bindings := n.bindings
	n.bindings = nil
	n.mu.Unlock()

	logger.Info("正在关闭节点")
	n.cancel()

	var err error
	for _, b := range bindings {
		err = multierr.Append(err, b.close())
	}
	n.wg.Wait()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	err = multierr.Append(err, n.app.Stop(stopCtx))

	n.mu.Lock()
	n.state = StateStopped
	n.mu.Unlock()

	logger.Info("节点已关闭")
	return err
}
