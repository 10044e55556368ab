package channel

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/types"
)

// Sender 可发送值的通道
type Sender interface {
	Send(v any) error
}

// Receiver 可接收值的通道
type Receiver interface {
	Receive(v any) error
}

// Receive 接收一个 T 类型的值
//
//	sum, err := channel.Receive[int](ch)
func Receive[T any](r Receiver) (T, error) {
	var v T
	err := r.Receive(&v)
	return v, err
}

// encodeTo 编码并发送，所有带格式的发送都经过这里
func encodeTo(sink interfaces.ByteSink, c interfaces.FrameCodec, v any) error {
	data, err := c.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncode, c.Format(), err)
	}
	return sink.WriteFrame(data)
}

// decodeFrom 接收并解码，所有带格式的接收都经过这里
//
// 解码失败不影响后续帧，通道保持可用。
func decodeFrom(frame []byte, err error, c interfaces.FrameCodec, v any) error {
	if err != nil {
		return err
	}
	return c.Decode(frame, v)
}

// ============================================================================
//                              SendChannel
// ============================================================================

// SendChannel 带格式的发送半边
type SendChannel struct {
	raw   *UnformattedSendChannel
	codec interfaces.FrameCodec
}

var _ Sender = (*SendChannel)(nil)

// Send 发送一个值
func (s *SendChannel) Send(v any) error {
	return encodeTo(s.raw, s.codec, v)
}

// Close 关闭发送方向
func (s *SendChannel) Close() error {
	return s.raw.CloseWrite()
}

// Format 返回协商的格式
func (s *SendChannel) Format() types.Format {
	return s.codec.Format()
}

// Info 返回通道信息
func (s *SendChannel) Info() Info {
	return s.raw.Info()
}

// ToUnformatted 返回底层帧级半边
func (s *SendChannel) ToUnformatted() *UnformattedSendChannel {
	return s.raw
}

// ============================================================================
//                              ReceiveChannel
// ============================================================================

// ReceiveChannel 带格式的接收半边
type ReceiveChannel struct {
	raw   *UnformattedReceiveChannel
	codec interfaces.FrameCodec
}

var _ Receiver = (*ReceiveChannel)(nil)

// Receive 接收一个值到 v（指针）
func (r *ReceiveChannel) Receive(v any) error {
	frame, err := r.raw.ReadFrame()
	return decodeFrom(frame, err, r.codec, v)
}

// ReceiveContext 接收一个值，ctx 取消时关闭通道
func (r *ReceiveChannel) ReceiveContext(ctx context.Context, v any) error {
	frame, err := r.raw.ReadFrameContext(ctx)
	return decodeFrom(frame, err, r.codec, v)
}

// Close 关闭接收方向
func (r *ReceiveChannel) Close() error {
	return r.raw.CloseRead()
}

// Format 返回协商的格式
func (r *ReceiveChannel) Format() types.Format {
	return r.codec.Format()
}

// Info 返回通道信息
func (r *ReceiveChannel) Info() Info {
	return r.raw.Info()
}

// ToUnformatted 返回底层帧级半边
func (r *ReceiveChannel) ToUnformatted() *UnformattedReceiveChannel {
	return r.raw
}

// ============================================================================
//                              Channel
// ============================================================================

// Channel 带格式的双向通道
type Channel struct {
	raw      *UnformattedChannel
	codec    interfaces.FrameCodec
	consumed atomic.Bool
}

var (
	_ Sender   = (*Channel)(nil)
	_ Receiver = (*Channel)(nil)
)

// New 在已完成握手的连接上构造通道
func New(conn net.Conn, session interfaces.EncryptedTransport, c interfaces.FrameCodec, info Info, maxFrameSize int) *Channel {
	info.Format = c.Format()
	info.Encrypted = session.Encrypted()
	return Wrap(NewUnformatted(conn, session, info, maxFrameSize), c)
}

// Wrap 为帧级通道附加编码
func Wrap(raw *UnformattedChannel, c interfaces.FrameCodec) *Channel {
	raw.info.Format = c.Format()
	return &Channel{raw: raw, codec: c}
}

// Send 发送一个值
func (ch *Channel) Send(v any) error {
	if ch.consumed.Load() {
		return types.ErrConsumed
	}
	return encodeTo(ch.raw, ch.codec, v)
}

// Receive 接收一个值到 v（指针）
func (ch *Channel) Receive(v any) error {
	if ch.consumed.Load() {
		return types.ErrConsumed
	}
	frame, err := ch.raw.ReadFrame()
	return decodeFrom(frame, err, ch.codec, v)
}

// ReceiveContext 接收一个值，ctx 取消时关闭通道并返回 Cancelled
func (ch *Channel) ReceiveContext(ctx context.Context, v any) error {
	if ch.consumed.Load() {
		return types.ErrConsumed
	}
	frame, err := ch.raw.ReadFrameContext(ctx)
	return decodeFrom(frame, err, ch.codec, v)
}

// Split 拆分为独立的发送与接收半边，原句柄失效
//
// 两个半边可在不同 goroutine 中使用，彼此无需协调。
func (ch *Channel) Split() (*SendChannel, *ReceiveChannel, error) {
	if !ch.consumed.CompareAndSwap(false, true) {
		return nil, nil, types.ErrConsumed
	}
	send, recv, err := ch.raw.Split()
	if err != nil {
		return nil, nil, err
	}
	return &SendChannel{raw: send, codec: ch.codec}, &ReceiveChannel{raw: recv, codec: ch.codec}, nil
}

// ToUnformatted 放弃编码，返回帧级通道，原句柄失效
func (ch *Channel) ToUnformatted() (*UnformattedChannel, error) {
	if !ch.consumed.CompareAndSwap(false, true) {
		return nil, types.ErrConsumed
	}
	return ch.raw, nil
}

// Close 关闭通道并释放连接
func (ch *Channel) Close() error {
	if !ch.consumed.CompareAndSwap(false, true) {
		return nil
	}
	return ch.raw.Close()
}

// Address 返回可交给第三方直连的地址
func (ch *Channel) Address() types.Address {
	return ch.raw.Address()
}

// Info 返回通道信息
func (ch *Channel) Info() Info {
	return ch.raw.Info()
}

// Format 返回协商的格式
func (ch *Channel) Format() types.Format {
	return ch.codec.Format()
}
