// Package route 实现按名称嵌套的服务注册表与分发
//
// 路径按 "/" 分段逐级查找：
//
//	Math/Add  ->  Route("Math") -> Service("Add")
//
// 查找只在每一级持有读锁，服务执行期间不持有任何注册表锁。
// 名称冲突只在注册时检查，查找没有回溯和通配。
//
// 服务在独立的 goroutine 中执行。返回的错误与 panic 都只写入日志和指标，
// 不会传回 Dispatch 的调用方。
package route
