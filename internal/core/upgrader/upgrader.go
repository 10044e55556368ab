package upgrader

import (
	"context"
	"fmt"
	"net"
	"slices"

	mss "github.com/multiformats/go-multistream"

	"github.com/znx3p0/canary/internal/core/channel"
	"github.com/znx3p0/canary/internal/core/codec"
	"github.com/znx3p0/canary/internal/core/framing"
	"github.com/znx3p0/canary/internal/core/metrics"
	"github.com/znx3p0/canary/internal/core/security"
	"github.com/znx3p0/canary/internal/util/netutil"
	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/upgrader")

// Upgrader 连接升级器
type Upgrader struct {
	transports *security.Transports
	cfg        Config
	metrics    *metrics.Metrics
}

// Accepted 入站升级结果
type Accepted struct {
	// Channel 已就绪的通道，尚未发送 Status
	Channel *channel.Channel

	// Path 对端请求的路径
	Path string
}

// New 创建升级器，m 可以为 nil
func New(transports *security.Transports, cfg Config, m *metrics.Metrics) (*Upgrader, error) {
	if transports == nil {
		return nil, ErrNilTransports
	}
	if cfg.NegotiateTimeout <= 0 {
		cfg.NegotiateTimeout = NewConfig().NegotiateTimeout
	}
	if cfg.MaxFrameSize <= 0 {
		cfg.MaxFrameSize = framing.DefaultMaxFrameSize
	}
	return &Upgrader{transports: transports, cfg: cfg, metrics: m}, nil
}

// accepts 是否接受该格式
func (u *Upgrader) accepts(f types.Format) bool {
	if !codec.IsSupported(f) {
		return false
	}
	return len(u.cfg.Accept) == 0 || slices.Contains(u.cfg.Accept, f)
}

// ============================================================================
//                              出站
// ============================================================================

// Outbound 以 addr 指定的路径与格式升级出站连接
//
// 成功时返回的通道已收到 Found。任何失败都会关闭 conn。
// expectedPeer 非空时要求对端身份一致。
func (u *Upgrader) Outbound(ctx context.Context, conn net.Conn, addr types.Address, format types.Format, expectedPeer string) (ch *channel.Channel, err error) {
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()

	c, err := codec.For(format)
	if err != nil {
		return nil, types.NewError(types.KindRejected, "upgrade", err)
	}
	st, err := u.transports.For(addr.Secure())
	if err != nil {
		return nil, types.NewError(types.KindHandshake, "upgrade", err)
	}

	logger.Debug("协商安全协议", "address", addr.String(), "protocol", st.ID())
	if err := u.selectSecurity(ctx, conn, st.ID()); err != nil {
		return nil, err
	}

	sess, err := st.SecureOutbound(ctx, conn, expectedPeer)
	if err != nil {
		u.metrics.HandshakeFailed(st.ID())
		return nil, err
	}

	release := netutil.BindDeadline(ctx, conn, u.cfg.NegotiateTimeout)
	defer release()

	hs := newHelloStream(conn, sess, u.cfg.MaxFrameSize)
	if err := hs.write(hello{Path: addr.Path, Format: format}.marshal()); err != nil {
		return nil, classifyIO(ctx, "hello", err)
	}
	raw, err := hs.read()
	if err != nil {
		return nil, classifyIO(ctx, "hello", err)
	}
	a, err := unmarshalAck(raw)
	if err != nil {
		return nil, types.NewError(types.KindHandshake, "hello", err)
	}
	if !a.Accepted {
		logger.Debug("hello 被拒绝", "address", addr.String(), "reason", a.Reason)
		return nil, types.Errorf(types.KindRejected, "hello", "%s", a.Reason)
	}

	ch = channel.New(conn, sess, c, channel.Info{
		Direction:  types.DirOutbound,
		Protocol:   sess.Protocol(),
		LocalPeer:  sess.LocalPeer(),
		RemotePeer: sess.RemotePeer(),
		Address:    addr,
	}, u.cfg.MaxFrameSize)

	status, err := channel.Receive[types.Status](ch)
	if err != nil {
		return nil, err
	}
	if err := status.Err(); err != nil {
		return nil, err
	}

	u.metrics.ChannelOpened(types.DirOutbound, addr.Provider)
	logger.Debug("出站通道就绪", "address", addr.String(), "format", format.String(), "peer", log.TruncateID(sess.RemotePeer(), 8))
	return ch, nil
}

// selectSecurity 客户端选择安全协议
func (u *Upgrader) selectSecurity(ctx context.Context, conn net.Conn, id string) error {
	release := netutil.BindDeadline(ctx, conn, u.cfg.NegotiateTimeout)
	defer release()

	selected, err := mss.SelectOneOf([]string{id}, conn)
	if err != nil {
		if ctx.Err() != nil {
			return types.NewError(types.KindCancelled, "negotiate security", err)
		}
		return types.NewError(types.KindHandshake, "negotiate security", err)
	}
	if selected != id {
		return types.Errorf(types.KindHandshake, "negotiate security", "unexpected protocol %q", selected)
	}
	return nil
}

// ============================================================================
//                              入站
// ============================================================================

// Inbound 升级入站连接
//
// kind 为监听端的地址类型：加密类型只协商加密会话，i 前缀类型只协商直通会话。
// kind 同时用于构造通道地址。任何失败都会关闭 conn。
func (u *Upgrader) Inbound(ctx context.Context, conn net.Conn, kind types.ProviderKind) (acc *Accepted, err error) {
	defer func() {
		if err != nil {
			_ = conn.Close()
		}
	}()

	st, err := u.negotiateSecurity(ctx, conn, kind)
	if err != nil {
		return nil, err
	}

	sess, err := st.SecureInbound(ctx, conn)
	if err != nil {
		u.metrics.HandshakeFailed(st.ID())
		return nil, err
	}

	release := netutil.BindDeadline(ctx, conn, u.cfg.NegotiateTimeout)
	defer release()

	hs := newHelloStream(conn, sess, u.cfg.MaxFrameSize)
	raw, err := hs.read()
	if err != nil {
		return nil, classifyIO(ctx, "hello", err)
	}
	h, err := unmarshalHello(raw)
	if err != nil {
		return nil, types.NewError(types.KindHandshake, "hello", err)
	}

	if !u.accepts(h.Format) {
		reason := fmt.Sprintf("format %s not accepted", h.Format)
		logger.Warn("拒绝 hello", "path", h.Path, "format", h.Format.String(), "remote", conn.RemoteAddr())
		if err := hs.write(ack{Accepted: false, Reason: reason}.marshal()); err != nil {
			logger.Debug("发送拒绝失败", "err", err)
		}
		return nil, types.Errorf(types.KindRejected, "hello", "%s", reason)
	}
	if err := hs.write(ack{Accepted: true}.marshal()); err != nil {
		return nil, classifyIO(ctx, "hello", err)
	}

	path := types.CleanPath(h.Path)
	ch := channel.New(conn, sess, codec.MustFor(h.Format), channel.Info{
		Direction:  types.DirInbound,
		Protocol:   sess.Protocol(),
		LocalPeer:  sess.LocalPeer(),
		RemotePeer: sess.RemotePeer(),
		Address:    types.NewAddress(kind, remoteEndpoint(conn), path),
	}, u.cfg.MaxFrameSize)

	u.metrics.ChannelOpened(types.DirInbound, kind)
	logger.Debug("入站通道就绪", "path", path, "format", h.Format.String(), "peer", log.TruncateID(sess.RemotePeer(), 8))
	return &Accepted{Channel: ch, Path: path}, nil
}

// negotiateSecurity 服务端只提供监听类型对应的安全协议
func (u *Upgrader) negotiateSecurity(ctx context.Context, conn net.Conn, kind types.ProviderKind) (interfaces.SecureTransport, error) {
	offered, err := u.transports.For(kind.Secure())
	if err != nil {
		return nil, types.NewError(types.KindHandshake, "negotiate security", err)
	}

	release := netutil.BindDeadline(ctx, conn, u.cfg.NegotiateTimeout)
	defer release()

	muxer := mss.NewMultistreamMuxer[string]()
	muxer.AddHandler(offered.ID(), nil)

	selected, _, err := muxer.Negotiate(conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, types.NewError(types.KindCancelled, "negotiate security", err)
		}
		return nil, types.NewError(types.KindHandshake, "negotiate security", err)
	}

	st, err := u.transports.ByID(selected)
	if err != nil {
		return nil, types.NewError(types.KindHandshake, "negotiate security", err)
	}
	return st, nil
}

func remoteEndpoint(conn net.Conn) string {
	if ra := conn.RemoteAddr(); ra != nil {
		return ra.String()
	}
	return "unknown"
}

// classifyIO hello 阶段的 I/O 错误
//
// 握手已完成，之后的断开属于协议失败，归为 Handshake，不会被重试。
func classifyIO(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return types.NewError(types.KindCancelled, op, err)
	}
	if types.KindOf(err) != types.KindUnknown {
		return err
	}
	return types.NewError(types.KindHandshake, op, err)
}

// ============================================================================
//                              helloStream
// ============================================================================

// helloStream 在安全会话上交换 hello 帧
//
// framing 不预读，之后构造的通道从下一帧开始读取。
type helloStream struct {
	r      *framing.Reader
	w      *framing.Writer
	sealer interfaces.Sealer
	opener interfaces.Opener
}

func newHelloStream(conn net.Conn, sess interfaces.EncryptedTransport, maxFrameSize int) *helloStream {
	return &helloStream{
		r:      framing.NewReader(conn, maxFrameSize),
		w:      framing.NewWriter(conn, maxFrameSize),
		sealer: sess.Sealer(),
		opener: sess.Opener(),
	}
}

func (h *helloStream) write(p []byte) error {
	sealed, err := h.sealer.Seal(p)
	if err != nil {
		return err
	}
	return h.w.WriteFrame(sealed)
}

func (h *helloStream) read() ([]byte, error) {
	sealed, err := h.r.ReadFrame()
	if err != nil {
		return nil, err
	}
	return h.opener.Open(sealed)
}
