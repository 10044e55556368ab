package route

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/znx3p0/canary/internal/core/channel"
	"github.com/znx3p0/canary/internal/core/metrics"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/route")

// Route 路由节点
type Route struct {
	name string

	mu      sync.RWMutex
	entries map[string]Value

	metrics  atomic.Pointer[metrics.Metrics]
	inflight inflight
}

// New 创建空路由
func New(name string) *Route {
	return &Route{
		name:    name,
		entries: make(map[string]Value),
	}
}

// Name 返回路由名称
func (r *Route) Name() string {
	return r.name
}

// SetMetrics 设置分发指标，nil 表示禁用
func (r *Route) SetMetrics(m *metrics.Metrics) {
	r.metrics.Store(m)
}

func validName(name string) error {
	if name == "" || strings.Contains(name, types.PathSeparator) {
		return fmt.Errorf("%w: %q", ErrEmptyName, name)
	}
	return nil
}

// ============================================================================
//                              注册
// ============================================================================

// insert 原子地插入注册项，名称已存在时返回 Conflict 且不修改任何状态
func (r *Route) insert(name string, v Value) error {
	if err := validName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return types.Errorf(types.KindConflict, "register", "%q already bound in %q", name, r.name)
	}
	r.entries[name] = v
	return nil
}

// RegisterService 注册服务
func (r *Route) RegisterService(name string, s Service) error {
	if s == nil {
		return ErrNilService
	}
	if err := r.insert(name, ServiceValue(s)); err != nil {
		return err
	}
	logger.Debug("服务已注册", "route", r.name, "name", name)
	return nil
}

// RegisterRoute 注册子路由
func (r *Route) RegisterRoute(name string, sub *Route) error {
	if sub == nil {
		return ErrNilRoute
	}
	if sub == r {
		return fmt.Errorf("%w: route cannot contain itself", ErrNilRoute)
	}
	if err := r.insert(name, RouteValue(sub)); err != nil {
		return err
	}
	logger.Debug("子路由已注册", "route", r.name, "name", name)
	return nil
}

// AddRoute 创建并注册名为 name 的子路由
func (r *Route) AddRoute(name string) (*Route, error) {
	sub := New(name)
	if err := r.RegisterRoute(name, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Register 注册携带共享元数据的服务
//
//	counter := route.NewShared(0)
//	route.Register(r, "Inc", counter, func(ctx context.Context, c *route.Shared[int], ch *channel.Channel) error {
//		c.Update(func(n *int) { *n++ })
//		return nil
//	})
func Register[M any](r *Route, name string, meta *Shared[M], fn func(context.Context, *Shared[M], *channel.Channel) error) error {
	if fn == nil {
		return ErrNilService
	}
	return r.RegisterService(name, func(ctx context.Context, ch *channel.Channel) error {
		return fn(ctx, meta, ch)
	})
}

// Remove 删除注册项，返回是否存在
func (r *Route) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// Names 返回当前层的名称，按字典序
func (r *Route) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Get 返回当前层的注册项
func (r *Route) Get(name string) (Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

// ============================================================================
//                              查找
// ============================================================================

// Lookup 按路径逐级查找服务
//
// 只有路径恰好停在服务上才算找到：路径停在路由上，
// 或服务之后还有剩余分段，都返回 NotFound。
func (r *Route) Lookup(path string) (Service, error) {
	node := r
	rest := types.CleanPath(path)
	for {
		var head string
		head, rest = types.HeadPath(rest)
		if head == "" {
			return nil, notFound(path)
		}

		v, ok := node.Get(head)
		if !ok {
			return nil, notFound(path)
		}

		switch v.kind {
		case KindRoute:
			node = v.route
		case KindService:
			if rest != "" {
				return nil, notFound(path)
			}
			return v.service, nil
		default:
			return nil, notFound(path)
		}
	}
}

func notFound(path string) error {
	return types.Errorf(types.KindNotFound, "dispatch", "path %q not found", path)
}

// ============================================================================
//                              分发
// ============================================================================

// Dispatch 解析路径并将通道交给服务
//
// 找到时先向对端发送 Found，再在新的 goroutine 中执行服务，调用方不等待。
// 未找到时向对端发送 NotFound，关闭通道并返回 NotFound 错误。
func (r *Route) Dispatch(ctx context.Context, path string, ch *channel.Channel) error {
	m := r.metrics.Load()

	svc, err := r.Lookup(path)
	if err != nil {
		m.Dispatch(metrics.OutcomeNotFound)
		logger.Warn("路径未找到", "path", path, "channel", ch.Info().ID)
		if sendErr := ch.Send(types.NotFound(path)); sendErr != nil {
			logger.Debug("无法回报 NotFound", "path", path, "err", sendErr)
		}
		_ = ch.Close()
		return err
	}

	if err := ch.Send(types.Found()); err != nil {
		_ = ch.Close()
		return err
	}
	m.Dispatch(metrics.OutcomeFound)

	r.invoke(ctx, path, svc, ch)
	return nil
}

// Switch 解析路径并将通道交给服务，不向对端发送状态
//
// 未找到时关闭通道并把 NotFound 返回给调用方。
func (r *Route) Switch(ctx context.Context, path string, ch *channel.Channel) error {
	m := r.metrics.Load()

	svc, err := r.Lookup(path)
	if err != nil {
		m.Dispatch(metrics.OutcomeNotFound)
		logger.Warn("路径未找到", "path", path, "channel", ch.Info().ID)
		_ = ch.Close()
		return err
	}
	m.Dispatch(metrics.OutcomeFound)

	r.invoke(ctx, path, svc, ch)
	return nil
}

// Introduce 先从通道读取目标路径，再分发
func (r *Route) Introduce(ctx context.Context, ch *channel.Channel) error {
	var path string
	if err := ch.ReceiveContext(ctx, &path); err != nil {
		_ = ch.Close()
		return err
	}
	return r.Dispatch(ctx, path, ch)
}

// invoke 在独立 goroutine 中执行服务
func (r *Route) invoke(ctx context.Context, path string, svc Service, ch *channel.Channel) {
	m := r.metrics.Load()
	id := ch.Info().ID
	sctx := withCtx(ctx, Ctx{Route: r, Path: path, ChannelID: id})

	r.inflight.add()
	m.ServiceStarted()

	go func() {
		defer r.inflight.done()
		defer m.ServiceDone()
		defer ch.Close()

		defer func() {
			if p := recover(); p != nil {
				m.Dispatch(metrics.OutcomePanicked)
				logger.Error("服务 panic",
					"path", path,
					"channel", id,
					"panic", fmt.Sprint(p),
					"stack", string(debug.Stack()))
			}
		}()

		if err := svc(sctx, ch); err != nil {
			m.Dispatch(metrics.OutcomeFailed)
			logger.Error("服务执行失败", "path", path, "channel", id, "err", err)
			return
		}
		m.Dispatch(metrics.OutcomeCompleted)
		logger.Debug("服务执行完成", "path", path, "channel", id)
	}()
}

// Wait 等待由本路由发起的服务执行全部结束
//
// 可以与 Dispatch 并发调用，返回时计数曾归零。
func (r *Route) Wait() {
	<-r.inflight.wait()
}

// WaitContext 等待服务执行结束或 ctx 取消
func (r *Route) WaitContext(ctx context.Context) error {
	select {
	case <-r.inflight.wait():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active 返回正在执行的服务数
func (r *Route) Active() int {
	return r.inflight.count()
}
