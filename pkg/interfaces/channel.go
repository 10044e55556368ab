package interfaces

import "github.com/znx3p0/canary/pkg/types"

// ByteSink 帧级发送端
//
// 同一 ByteSink 上的多个 WriteFrame 调用不会交错写出字节。
type ByteSink interface {
	// WriteFrame 发送一帧
	WriteFrame(payload []byte) error

	// CloseWrite 关闭发送方向
	CloseWrite() error
}

// ByteSource 帧级接收端
type ByteSource interface {
	// ReadFrame 阻塞直到读到一整帧或流结束
	ReadFrame() ([]byte, error)

	// CloseRead 关闭接收方向
	CloseRead() error
}

// FrameCodec 值编解码
type FrameCodec interface {
	// Format 返回编码标签
	Format() types.Format

	// Encode 编码一个值
	Encode(v any) ([]byte, error)

	// Decode 将数据解码到 v（指针）
	Decode(data []byte, v any) error
}
