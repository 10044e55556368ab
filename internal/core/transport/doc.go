// Package transport 管理原始流提供者
//
// 每个提供者处理一个基础地址类型及其 i 前缀变体：
//
//	tcp/itcp     tcp
//	unix/iunix   unix
//	quic/iquic   quic（每个通道一条双向流）
//	ws/iws       websocket（二进制消息适配为字节流）
//	mem/imem     memory（进程内命名网络）
//
// 提供者只负责字节流，加密与否由升级器按地址类型决定。
package transport
