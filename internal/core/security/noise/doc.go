// Package noise 实现基于 Noise 协议的加密会话
//
// 握手模式 Noise_XX_25519_ChaChaPoly_SHA256，prologue 为协议标识：
//
//	-> e
//	<- e, ee, s, es, payload
//	-> s, se, payload
//	<- confirm                 (响应方用传输密钥加密的空帧)
//
// payload 为 protobuf 编码：
//
//	1: identity_key  Ed25519 身份公钥
//	2: identity_sig  Sign("canary-noise-static:" || x25519 静态公钥)
//
// 握手消息使用 framing 包的长度前缀。配置预共享密钥时以 psk3 修饰。
// 最后的确认帧使发起方在握手阶段就能发现响应方拒绝了第三条消息。
//
// 传输阶段每帧负载按 65519 字节分块，每块独立加密（密文最长 65535 字节），
// 两个方向的 CipherState 各自独立、计数器单调递增。任何认证失败返回 Tamper。
package noise
