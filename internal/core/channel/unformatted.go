package channel

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/znx3p0/canary/internal/core/framing"
	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/channel")

// ============================================================================
//                              UnformattedSendChannel
// ============================================================================

// UnformattedSendChannel 帧级发送半边
type UnformattedSendChannel struct {
	res  *resource
	info *Info

	// mu 保证加密与写帧作为一个整体，计数器顺序与线上顺序一致
	mu     sync.Mutex
	w      *framing.Writer
	sealer interfaces.Sealer

	shut     atomic.Bool
	released atomic.Bool
}

var _ interfaces.ByteSink = (*UnformattedSendChannel)(nil)

// WriteFrame 发送一帧原始负载
func (s *UnformattedSendChannel) WriteFrame(payload []byte) error {
	if s.shut.Load() {
		return types.NewError(types.KindCancelled, "send", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := s.sealer.Seal(payload)
	if err != nil {
		return err
	}
	if err := s.w.WriteFrame(sealed); err != nil {
		return classify("send", s.res, err)
	}
	return nil
}

// CloseWrite 关闭发送方向并释放引用，幂等
func (s *UnformattedSendChannel) CloseWrite() error {
	s.shut.Store(true)
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	s.res.closeWrite()
	return s.res.release()
}

// Close 同 CloseWrite
func (s *UnformattedSendChannel) Close() error {
	return s.CloseWrite()
}

// Info 返回通道信息
func (s *UnformattedSendChannel) Info() Info {
	return *s.info
}

// ============================================================================
//                              UnformattedReceiveChannel
// ============================================================================

// UnformattedReceiveChannel 帧级接收半边
type UnformattedReceiveChannel struct {
	res  *resource
	info *Info

	mu     sync.Mutex
	r      *framing.Reader
	opener interfaces.Opener

	shut     atomic.Bool
	released atomic.Bool
}

var _ interfaces.ByteSource = (*UnformattedReceiveChannel)(nil)

// ReadFrame 接收一帧原始负载
//
// 认证失败时立即拆除连接并返回 Tamper。
func (r *UnformattedReceiveChannel) ReadFrame() ([]byte, error) {
	if r.shut.Load() {
		return nil, types.NewError(types.KindCancelled, "receive", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sealed, err := r.r.ReadFrame()
	if err != nil {
		if r.shut.Load() {
			return nil, types.NewError(types.KindCancelled, "receive", err)
		}
		return nil, classify("receive", r.res, err)
	}
	payload, err := r.opener.Open(sealed)
	if err != nil {
		logger.Warn("帧认证失败，拆除通道", append(r.info.logArgs(), "err", err)...)
		_ = r.res.close()
		return nil, err
	}
	return payload, nil
}

// ReadFrameContext 接收一帧，ctx 取消时关闭整个通道并返回 Cancelled
func (r *UnformattedReceiveChannel) ReadFrameContext(ctx context.Context) ([]byte, error) {
	if ctx.Done() == nil {
		return r.ReadFrame()
	}
	stop := context.AfterFunc(ctx, func() { _ = r.res.close() })
	defer stop()

	frame, err := r.ReadFrame()
	if err != nil && ctx.Err() != nil {
		return nil, types.NewError(types.KindCancelled, "receive", ctx.Err())
	}
	return frame, err
}

// CloseRead 关闭接收方向并释放引用，幂等
func (r *UnformattedReceiveChannel) CloseRead() error {
	r.shut.Store(true)
	if !r.released.CompareAndSwap(false, true) {
		return nil
	}
	r.res.closeRead()
	return r.res.release()
}

// Close 同 CloseRead
func (r *UnformattedReceiveChannel) Close() error {
	return r.CloseRead()
}

// Info 返回通道信息
func (r *UnformattedReceiveChannel) Info() Info {
	return *r.info
}

// ============================================================================
//                              UnformattedChannel
// ============================================================================

// UnformattedChannel 帧级双向通道
type UnformattedChannel struct {
	send     *UnformattedSendChannel
	recv     *UnformattedReceiveChannel
	res      *resource
	info     *Info
	consumed atomic.Bool
}

// NewUnformatted 在已完成握手的连接上构造帧级通道
func NewUnformatted(conn net.Conn, session interfaces.EncryptedTransport, info Info, maxFrameSize int) *UnformattedChannel {
	info = info.withDefaults()
	res := newResource(conn)
	ip := &info

	c := &UnformattedChannel{
		res:  res,
		info: ip,
		send: &UnformattedSendChannel{
			res:    res,
			info:   ip,
			w:      framing.NewWriter(conn, maxFrameSize),
			sealer: session.Sealer(),
		},
		recv: &UnformattedReceiveChannel{
			res:    res,
			info:   ip,
			r:      framing.NewReader(conn, maxFrameSize),
			opener: session.Opener(),
		},
	}
	logger.Debug("通道已建立", ip.logArgs()...)
	return c
}

// WriteFrame 发送一帧原始负载
func (c *UnformattedChannel) WriteFrame(payload []byte) error {
	if c.consumed.Load() {
		return types.ErrConsumed
	}
	return c.send.WriteFrame(payload)
}

// ReadFrame 接收一帧原始负载
func (c *UnformattedChannel) ReadFrame() ([]byte, error) {
	if c.consumed.Load() {
		return nil, types.ErrConsumed
	}
	return c.recv.ReadFrame()
}

// ReadFrameContext 接收一帧，ctx 取消时关闭通道
func (c *UnformattedChannel) ReadFrameContext(ctx context.Context) ([]byte, error) {
	if c.consumed.Load() {
		return nil, types.ErrConsumed
	}
	return c.recv.ReadFrameContext(ctx)
}

// Split 拆分为独立的发送与接收半边，原句柄失效
func (c *UnformattedChannel) Split() (*UnformattedSendChannel, *UnformattedReceiveChannel, error) {
	if !c.consumed.CompareAndSwap(false, true) {
		return nil, nil, types.ErrConsumed
	}
	return c.send, c.recv, nil
}

// Close 关闭通道并释放连接；已拆分的句柄关闭为空操作
func (c *UnformattedChannel) Close() error {
	if !c.consumed.CompareAndSwap(false, true) {
		return nil
	}
	c.send.shut.Store(true)
	c.recv.shut.Store(true)
	logger.Debug("通道已关闭", c.info.logArgs()...)
	return c.res.close()
}

// Info 返回通道信息
func (c *UnformattedChannel) Info() Info {
	return *c.info
}

// Address 返回远端端点与绑定路径
func (c *UnformattedChannel) Address() types.Address {
	return c.info.Address
}

// CloseWrite 关闭发送方向，仍可继续接收
func (c *UnformattedChannel) CloseWrite() error {
	if c.consumed.Load() {
		return types.ErrConsumed
	}
	c.send.shut.Store(true)
	c.res.closeWrite()
	return nil
}

// CloseRead 关闭接收方向
func (c *UnformattedChannel) CloseRead() error {
	if c.consumed.Load() {
		return types.ErrConsumed
	}
	c.recv.shut.Store(true)
	c.res.closeRead()
	return nil
}

var (
	_ interfaces.ByteSink   = (*UnformattedChannel)(nil)
	_ interfaces.ByteSource = (*UnformattedChannel)(nil)
)
