package route

import "sync"

var (
	globalOnce  sync.Once
	globalRoute *Route
)

// Global 返回进程级默认路由
//
// 首次调用时创建，进程生命周期内不会被拆除。节点只在调用方
// 没有提供路由时使用它；测试应使用 New 构造隔离的路由。
func Global() *Route {
	globalOnce.Do(func() {
		globalRoute = New("global")
	})
	return globalRoute
}
