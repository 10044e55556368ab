// Package types 定义 canary 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 canary 内部包。
//
// # 文件组织
//
//   - errors.go  - 错误类别 Kind 与分类错误 Error
//   - enums.go   - Direction, Format, ProviderKind
//   - address.go - Address 与路径工具
//   - status.go  - 分发结果 Status
//
// # 错误判断
//
//	if errors.Is(err, types.ErrNotFound) {
//	    // 对端没有注册该路径
//	}
//
//	if types.IsTerminal(err) {
//	    // 正常结束，不是故障
//	}
package types
