package noise

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/znx3p0/canary/internal/core/identity"
	"github.com/znx3p0/canary/internal/util/netutil"
	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/security/noise")

// ProtocolID 协议标识
const ProtocolID = "/canary/noise/1.0.0"

// DefaultHandshakeTimeout 默认握手超时
const DefaultHandshakeTimeout = 10 * time.Second

// Config Noise 配置
type Config struct {
	// HandshakeTimeout 握手超时
	HandshakeTimeout time.Duration

	// PreSharedKey 32 字节预共享密钥，nil 表示不使用
	PreSharedKey []byte
}

// Transport Noise 安全传输
type Transport struct {
	identity *identity.Identity
	cfg      Config
}

var _ interfaces.SecureTransport = (*Transport)(nil)

// New 创建 Noise 传输
func New(id *identity.Identity, cfg Config) (*Transport, error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	if len(cfg.PreSharedKey) != 0 && len(cfg.PreSharedKey) != 32 {
		return nil, ErrInvalidPSK
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &Transport{identity: id, cfg: cfg}, nil
}

// ID 返回协议标识
func (t *Transport) ID() string {
	return ProtocolID
}

// SecureInbound 作为响应方握手
func (t *Transport) SecureInbound(ctx context.Context, conn net.Conn) (interfaces.Session, error) {
	return t.secure(ctx, conn, handshakeParams{
		identity: t.identity,
		psk:      t.cfg.PreSharedKey,
	})
}

// SecureOutbound 作为发起方握手
func (t *Transport) SecureOutbound(ctx context.Context, conn net.Conn, expectedPeer string) (interfaces.Session, error) {
	return t.secure(ctx, conn, handshakeParams{
		identity:     t.identity,
		psk:          t.cfg.PreSharedKey,
		initiator:    true,
		expectedPeer: expectedPeer,
	})
}

func (t *Transport) secure(ctx context.Context, conn net.Conn, p handshakeParams) (interfaces.Session, error) {
	if conn == nil {
		return nil, types.Errorf(types.KindHandshake, "noise handshake", "conn is nil")
	}
	release := netutil.BindDeadline(ctx, conn, t.cfg.HandshakeTimeout)
	defer release()

	sess, err := performHandshake(conn, p)
	if err != nil {
		logger.Warn("Noise 握手失败",
			"initiator", p.initiator,
			"remote", conn.RemoteAddr(),
			"err", err)
		if ctx.Err() != nil {
			return nil, types.NewError(types.KindCancelled, "noise handshake", fmt.Errorf("%w: %v", ctx.Err(), err))
		}
		return nil, types.NewError(types.KindHandshake, "noise handshake", err)
	}

	logger.Debug("Noise 握手成功",
		"initiator", p.initiator,
		"peer", log.TruncateID(sess.RemotePeer(), 8))
	return sess, nil
}
