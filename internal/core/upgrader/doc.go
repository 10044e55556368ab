// Package upgrader 将原始连接升级为通道
//
// 出站流程：
//
//	1. multistream-select 选择地址类型要求的安全协议
//	2. 安全握手（Noise 或直通）
//	3. 发送 hello（路径 + 格式）
//	4. 读取 hello-ack，被拒绝时返回 Rejected
//	5. 用协商的格式读取 Status（Found / NotFound）
//
// 入站流程：
//
//	1. multistream 在启用的安全协议中协商
//	2. 安全握手
//	3. 读取 hello，格式不被接受时回复拒绝并返回 Rejected
//	4. 回复 ack，返回通道与请求路径，由调用方分发
//
// hello 与 ack 在安全会话之内交换，与后续负载使用同一加密状态。
package upgrader
