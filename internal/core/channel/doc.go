// Package channel 实现分层的对象通道
//
// 层次（每层持有下一层，而不是重新实现传输逻辑）：
//
//	UnformattedSendChannel    = framing.Writer + Sealer        （ByteSink）
//	UnformattedReceiveChannel = framing.Reader + Opener        （ByteSource）
//	UnformattedChannel        = 以上两者 + 共享资源
//
//	SendChannel    = UnformattedSendChannel    + FrameCodec
//	ReceiveChannel = UnformattedReceiveChannel + FrameCodec
//	Channel        = UnformattedChannel        + FrameCodec
//
// 所有带格式的收发只经过 encodeTo / decodeFrom 两个函数。
//
// # 所有权
//
// 每个通道只拥有一个底层连接。Split 与 ToUnformatted 转移所有权，
// 原句柄随之失效（返回 Consumed）。拆分后两个半边各自关闭自己的方向，
// 两边都关闭后连接才真正释放。关闭不保证发送缓冲被冲刷。
//
// # 终止
//
// 本端关闭后，阻塞中的接收返回 Cancelled；对端关闭返回 EndOfStream；
// 认证失败返回 Tamper 并立即拆除连接。
package channel
