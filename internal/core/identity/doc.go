// Package identity 提供节点身份
//
// 身份是一对 Ed25519 密钥。身份标识为公钥的 base58 编码，
// 用于日志、握手后的远端标识以及地址固定（pinning）。
// Noise 握手使用的 X25519 静态密钥由同一对密钥派生，
// 握手负载中的签名将二者绑定。
package identity
