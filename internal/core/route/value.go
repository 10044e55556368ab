package route

import (
	"context"
	"sync"

	"github.com/znx3p0/canary/internal/core/channel"
)

// Service 服务入口，拥有传入的通道
type Service func(ctx context.Context, ch *channel.Channel) error

// ValueKind 注册项类别
type ValueKind int

const (
	// KindService 服务
	KindService ValueKind = iota + 1
	// KindRoute 子路由
	KindRoute
)

// Value 注册项，服务或子路由二选一
type Value struct {
	kind    ValueKind
	service Service
	route   *Route
}

// ServiceValue 包装服务
func ServiceValue(s Service) Value {
	return Value{kind: KindService, service: s}
}

// RouteValue 包装子路由
func RouteValue(r *Route) Value {
	return Value{kind: KindRoute, route: r}
}

// Kind 返回类别
func (v Value) Kind() ValueKind { return v.kind }

// Service 返回服务，非服务时为 nil
func (v Value) Service() Service { return v.service }

// Route 返回子路由，非路由时为 nil
func (v Value) Route() *Route { return v.route }

// ============================================================================
//                              共享元数据
// ============================================================================

// Shared 服务间共享的元数据
//
// 同一服务的并发调用看到一致的值。读写都通过方法进行。
type Shared[M any] struct {
	mu sync.RWMutex
	v  M
}

// NewShared 创建共享元数据
func NewShared[M any](v M) *Shared[M] {
	return &Shared[M]{v: v}
}

// Get 返回当前值的副本
func (s *Shared[M]) Get() M {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

// Read 在读锁内访问当前值
func (s *Shared[M]) Read(fn func(M)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.v)
}

// Update 在写锁内修改当前值
func (s *Shared[M]) Update(fn func(*M)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.v)
}
