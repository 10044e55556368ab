package noise

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/znx3p0/canary/internal/core/identity"
	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/types"
)

type result struct {
	sess interfaces.Session
	err  error
}

func newTransport(t *testing.T, psk []byte) (*Transport, *identity.Identity) {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	tr, err := New(id, Config{HandshakeTimeout: 2 * time.Second, PreSharedKey: psk})
	require.NoError(t, err)
	return tr, id
}

// handshake 在 net.Pipe 上并发执行两端握手
func handshake(t *testing.T, client, server *Transport, expected string) (result, result) {
	t.Helper()
	c, s := net.Pipe()
	t.Cleanup(func() {
		c.Close()
		s.Close()
	})

	srvCh := make(chan result, 1)
	go func() {
		sess, err := server.SecureInbound(context.Background(), s)
		if err != nil {
			s.Close()
		}
		srvCh <- result{sess, err}
	}()

	sess, err := client.SecureOutbound(context.Background(), c, expected)
	if err != nil {
		c.Close()
	}
	return result{sess, err}, <-srvCh
}

func TestHandshake_Success(t *testing.T) {
	client, clientID := newTransport(t, nil)
	server, serverID := newTransport(t, nil)

	cr, sr := handshake(t, client, server, serverID.ID())
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)

	assert.Equal(t, serverID.ID(), cr.sess.RemotePeer())
	assert.Equal(t, clientID.ID(), sr.sess.RemotePeer())
	assert.Equal(t, ProtocolID, cr.sess.Protocol())
	assert.True(t, cr.sess.Encrypted())

	// 双向加解密
	ct, err := cr.sess.Sealer().Seal([]byte("ping"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(ct, []byte("ping")))
	pt, err := sr.sess.Opener().Open(ct)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(pt))

	ct, err = sr.sess.Sealer().Seal([]byte("pong"))
	require.NoError(t, err)
	pt, err = cr.sess.Opener().Open(ct)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(pt))

	t.Log("✅ Noise 握手与双向加密成功")
}

// 期望身份不匹配时两端都以 Handshake 失败
func TestHandshake_PinnedPeerMismatch(t *testing.T) {
	client, _ := newTransport(t, nil)
	server, _ := newTransport(t, nil)
	other, err := identity.Generate()
	require.NoError(t, err)

	cr, sr := handshake(t, client, server, other.ID())
	require.Error(t, cr.err)
	assert.ErrorIs(t, cr.err, types.ErrHandshake)
	assert.ErrorIs(t, cr.err, ErrPeerMismatch)

	require.Error(t, sr.err)
	assert.ErrorIs(t, sr.err, types.ErrHandshake)
	assert.Nil(t, cr.sess)
	assert.Nil(t, sr.sess)
}

func TestHandshake_PSK(t *testing.T) {
	t.Run("matching", func(t *testing.T) {
		client, _ := newTransport(t, DerivePSK("realm-a"))
		server, _ := newTransport(t, DerivePSK("realm-a"))
		cr, sr := handshake(t, client, server, "")
		assert.NoError(t, cr.err)
		assert.NoError(t, sr.err)
	})

	t.Run("mismatched", func(t *testing.T) {
		client, _ := newTransport(t, DerivePSK("realm-a"))
		server, _ := newTransport(t, DerivePSK("realm-b"))
		cr, sr := handshake(t, client, server, "")
		assert.ErrorIs(t, cr.err, types.ErrHandshake)
		assert.ErrorIs(t, sr.err, types.ErrHandshake)
	})

	t.Run("absent on one side", func(t *testing.T) {
		client, _ := newTransport(t, nil)
		server, _ := newTransport(t, DerivePSK("realm-a"))
		cr, sr := handshake(t, client, server, "")
		assert.ErrorIs(t, cr.err, types.ErrHandshake)
		assert.ErrorIs(t, sr.err, types.ErrHandshake)
	})
}

func TestHandshake_GarbageIsHandshakeError(t *testing.T) {
	server, _ := newTransport(t, nil)
	c, s := net.Pipe()
	defer c.Close()
	defer s.Close()

	go func() {
		_, _ = c.Write([]byte{0x05, 'h', 'e', 'l', 'l', 'o'})
		c.Close()
	}()

	_, err := server.SecureInbound(context.Background(), s)
	assert.ErrorIs(t, err, types.ErrHandshake)
}

func TestHandshake_Timeout(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	server, err := New(id, Config{HandshakeTimeout: 30 * time.Millisecond})
	require.NoError(t, err)

	c, s := net.Pipe()
	defer c.Close()
	defer s.Close()

	start := time.Now()
	_, err = server.SecureInbound(context.Background(), s)
	assert.ErrorIs(t, err, types.ErrHandshake)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSession_TamperDetected(t *testing.T) {
	client, _ := newTransport(t, nil)
	server, _ := newTransport(t, nil)
	cr, sr := handshake(t, client, server, "")
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)

	ct, err := cr.sess.Sealer().Seal([]byte("sensitive"))
	require.NoError(t, err)
	ct[0] ^= 0x01

	_, err = sr.sess.Opener().Open(ct)
	assert.ErrorIs(t, err, types.ErrTamper)

	_, err = sr.sess.Opener().Open([]byte{1, 2, 3})
	assert.ErrorIs(t, err, types.ErrTamper)
}

// 计数器随每条消息推进，重放的密文无法再次解密
func TestSession_ReplayRejected(t *testing.T) {
	client, _ := newTransport(t, nil)
	server, _ := newTransport(t, nil)
	cr, sr := handshake(t, client, server, "")
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)

	ct, err := cr.sess.Sealer().Seal([]byte("once"))
	require.NoError(t, err)
	_, err = sr.sess.Opener().Open(ct)
	require.NoError(t, err)

	_, err = sr.sess.Opener().Open(ct)
	assert.ErrorIs(t, err, types.ErrTamper)
}

func TestSession_LargePayloadChunked(t *testing.T) {
	client, _ := newTransport(t, nil)
	server, _ := newTransport(t, nil)
	cr, sr := handshake(t, client, server, "")
	require.NoError(t, cr.err)
	require.NoError(t, sr.err)

	for _, size := range []int{0, 1, maxPlaintext, maxPlaintext + 1, 3*maxPlaintext + 17} {
		msg := bytes.Repeat([]byte{0x5a}, size)
		ct, err := cr.sess.Sealer().Seal(msg)
		require.NoError(t, err)

		chunks := size/maxPlaintext + 1
		if size > 0 && size%maxPlaintext == 0 {
			chunks = size / maxPlaintext
		}
		assert.Equal(t, size+chunks*tagSize, len(ct), "size %d", size)

		pt, err := sr.sess.Opener().Open(ct)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(msg, pt), "size %d", size)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Config{})
	assert.ErrorIs(t, err, ErrNilIdentity)

	id, err := identity.Generate()
	require.NoError(t, err)
	_, err = New(id, Config{PreSharedKey: []byte("short")})
	assert.ErrorIs(t, err, ErrInvalidPSK)

	assert.Nil(t, DerivePSK(""))
	assert.Len(t, DerivePSK("x"), 32)
	assert.Equal(t, DerivePSK("x"), DerivePSK("x"))
}

func TestPayload_RoundTrip(t *testing.T) {
	p := handshakePayload{IdentityKey: []byte{1, 2, 3}, IdentitySig: []byte{4, 5}}
	got, err := unmarshalPayload(p.marshal())
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = unmarshalPayload([]byte{0x0a})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = unmarshalPayload(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
