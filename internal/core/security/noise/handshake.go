package noise

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"net"

	"github.com/flynn/noise"

	"github.com/znx3p0/canary/internal/core/framing"
	"github.com/znx3p0/canary/internal/core/identity"
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// handshakeParams 单次握手参数
type handshakeParams struct {
	identity     *identity.Identity
	psk          []byte
	initiator    bool
	expectedPeer string
}

// performHandshake 执行 Noise XX 握手并返回传输会话
func performHandshake(conn net.Conn, p handshakeParams) (*Session, error) {
	staticPriv, staticPub, err := p.identity.StaticKey()
	if err != nil {
		return nil, fmt.Errorf("derive static key: %w", err)
	}

	cfg := noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     p.initiator,
		Prologue:      []byte(ProtocolID),
		StaticKeypair: noise.DHKey{Private: staticPriv, Public: staticPub},
	}
	if len(p.psk) > 0 {
		cfg.PresharedKey = p.psk
		cfg.PresharedKeyPlacement = 3
	}
	hs, err := noise.NewHandshakeState(cfg)
	if err != nil {
		return nil, fmt.Errorf("create handshake state: %w", err)
	}

	local := handshakePayload{
		IdentityKey: p.identity.PublicKey(),
		IdentitySig: p.identity.Sign(signedStatic(staticPub)),
	}.marshal()

	r := framing.NewReader(conn, maxCiphertext)
	w := framing.NewWriter(conn, maxCiphertext)

	var (
		sendCS, recvCS *noise.CipherState
		remoteKey      ed25519.PublicKey
	)
	if p.initiator {
		sendCS, recvCS, remoteKey, err = initiatorHandshake(r, w, hs, local, p.expectedPeer)
	} else {
		sendCS, recvCS, remoteKey, err = responderHandshake(r, w, hs, local)
	}
	if err != nil {
		return nil, err
	}

	return &Session{
		sealer:     &sealer{cs: sendCS},
		opener:     &opener{cs: recvCS},
		localPeer:  p.identity.ID(),
		remotePeer: identity.IDFromPublicKey(remoteKey),
		remoteKey:  remoteKey,
	}, nil
}

// initiatorHandshake 发起方
//
//  1. -> e
//  2. <- e, ee, s, es, payload   校验身份，不匹配则在发送任何身份信息前中止
//  3. -> s, se, payload
//  4. <- confirm
func initiatorHandshake(r *framing.Reader, w *framing.Writer, hs *noise.HandshakeState, local []byte, expected string) (*noise.CipherState, *noise.CipherState, ed25519.PublicKey, error) {
	msg1, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 1: %w", err)
	}
	if err := w.WriteFrame(msg1); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 1: %w", err)
	}

	msg2, err := r.ReadFrame()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 2: %w", err)
	}
	remotePayload, _, _, err := hs.ReadMessage(nil, msg2)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read message 2: %w", err)
	}
	remoteKey, err := verifyPayload(remotePayload, hs.PeerStatic())
	if err != nil {
		return nil, nil, nil, err
	}
	if expected != "" && identity.IDFromPublicKey(remoteKey) != expected {
		return nil, nil, nil, fmt.Errorf("%w: expected %s, got %s", ErrPeerMismatch, expected, identity.IDFromPublicKey(remoteKey))
	}

	msg3, cs1, cs2, err := hs.WriteMessage(nil, local)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 3: %w", err)
	}
	if err := w.WriteFrame(msg3); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 3: %w", err)
	}

	// cs1 发送，cs2 接收
	confirm, err := r.ReadFrame()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive confirmation: %w", err)
	}
	if _, err := cs2.Decrypt(nil, nil, confirm); err != nil {
		return nil, nil, nil, fmt.Errorf("read confirmation: %w", err)
	}
	return cs1, cs2, remoteKey, nil
}

// responderHandshake 响应方
func responderHandshake(r *framing.Reader, w *framing.Writer, hs *noise.HandshakeState, local []byte) (*noise.CipherState, *noise.CipherState, ed25519.PublicKey, error) {
	msg1, err := r.ReadFrame()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 1: %w", err)
	}
	if _, _, _, err := hs.ReadMessage(nil, msg1); err != nil {
		return nil, nil, nil, fmt.Errorf("read message 1: %w", err)
	}

	msg2, _, _, err := hs.WriteMessage(nil, local)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 2: %w", err)
	}
	if err := w.WriteFrame(msg2); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 2: %w", err)
	}

	msg3, err := r.ReadFrame()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 3: %w", err)
	}
	remotePayload, cs1, cs2, err := hs.ReadMessage(nil, msg3)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read message 3: %w", err)
	}
	remoteKey, err := verifyPayload(remotePayload, hs.PeerStatic())
	if err != nil {
		return nil, nil, nil, err
	}

	// 响应方与发起方相反：cs2 发送，cs1 接收
	confirm, err := cs2.Encrypt(nil, nil, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write confirmation: %w", err)
	}
	if err := w.WriteFrame(confirm); err != nil {
		return nil, nil, nil, fmt.Errorf("send confirmation: %w", err)
	}
	return cs2, cs1, remoteKey, nil
}

// verifyPayload 校验远端负载并返回其身份公钥
func verifyPayload(raw, remoteStatic []byte) (ed25519.PublicKey, error) {
	if len(remoteStatic) != 32 {
		return nil, fmt.Errorf("%w: static key %d bytes", ErrInvalidPayload, len(remoteStatic))
	}
	p, err := unmarshalPayload(raw)
	if err != nil {
		return nil, err
	}
	if len(p.IdentityKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: identity key %d bytes", ErrInvalidPayload, len(p.IdentityKey))
	}
	pub := ed25519.PublicKey(p.IdentityKey)
	if !identity.Verify(pub, signedStatic(remoteStatic), p.IdentitySig) {
		return nil, ErrInvalidSignature
	}

	// 静态密钥必须由身份密钥派生，防止复用他人签名
	derived, err := identity.CurvePublicKey(pub)
	if err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	if !bytes.Equal(derived, remoteStatic) {
		return nil, ErrInvalidSignature
	}
	return pub, nil
}
