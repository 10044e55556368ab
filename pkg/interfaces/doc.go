// Package interfaces 定义 canary 的能力接口
//
// 通道由若干窄接口组合而成，每一层只持有（而非继承）它所依赖的下一层：
//
//	ByteSink / ByteSource      帧级字节收发（分帧 + 加解密）
//	FrameCodec                 值与帧负载之间的编解码
//	EncryptedTransport         直通或认证加密，两种实现对上层透明
//	SecureTransport            将原始连接升级为 Session 的握手协议
//	Provider / Listener        原始双工流的来源
package interfaces
