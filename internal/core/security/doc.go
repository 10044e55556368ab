// Package security 组装会话层
//
// 每个地址类型在构造通道时恰好选择一种 SecureTransport：
// 安全类型使用 noise，i 前缀类型使用 insecure。两者实现同一接口，
// 通道和路由代码不区分当前是否加密。
package security
