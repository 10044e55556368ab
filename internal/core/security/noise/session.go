package noise

import (
	"crypto/ed25519"
	"sync"

	"github.com/flynn/noise"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/types"
)

const (
	// maxCiphertext Noise 单条消息上限
	maxCiphertext = 65535
	// tagSize ChaChaPoly 认证标签长度
	tagSize = 16
	// maxPlaintext 单块明文上限
	maxPlaintext = maxCiphertext - tagSize
)

// Session Noise 传输会话
type Session struct {
	sealer *sealer
	opener *opener

	localPeer  string
	remotePeer string
	remoteKey  ed25519.PublicKey
}

var _ interfaces.Session = (*Session)(nil)

// Sealer 返回发送方向状态
func (s *Session) Sealer() interfaces.Sealer { return s.sealer }

// Opener 返回接收方向状态
func (s *Session) Opener() interfaces.Opener { return s.opener }

// Encrypted 总是 true
func (s *Session) Encrypted() bool { return true }

// Protocol 返回协议标识
func (s *Session) Protocol() string { return ProtocolID }

// LocalPeer 本地身份标识
func (s *Session) LocalPeer() string { return s.localPeer }

// RemotePeer 远端身份标识
func (s *Session) RemotePeer() string { return s.remotePeer }

// RemotePublicKey 远端 Ed25519 身份公钥
func (s *Session) RemotePublicKey() ed25519.PublicKey { return s.remoteKey }

// ============================================================================
//                              sealer / opener
// ============================================================================

type sealer struct {
	mu sync.Mutex
	cs *noise.CipherState
}

// Seal 分块加密
func (s *sealer) Seal(plaintext []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks := len(plaintext)/maxPlaintext + 1
	out := make([]byte, 0, len(plaintext)+chunks*tagSize)
	for {
		n := min(len(plaintext), maxPlaintext)
		var err error
		out, err = s.cs.Encrypt(out, nil, plaintext[:n])
		if err != nil {
			return nil, types.NewError(types.KindTransport, "noise seal", err)
		}
		plaintext = plaintext[n:]
		if len(plaintext) == 0 {
			return out, nil
		}
	}
}

type opener struct {
	mu sync.Mutex
	cs *noise.CipherState
}

// Open 分块解密，任何一块认证失败即返回 Tamper
func (o *opener) Open(ciphertext []byte) ([]byte, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(ciphertext) < tagSize {
		return nil, types.Errorf(types.KindTamper, "noise open", "ciphertext too short: %d", len(ciphertext))
	}
	out := make([]byte, 0, len(ciphertext))
	for len(ciphertext) > 0 {
		n := min(len(ciphertext), maxCiphertext)
		var err error
		out, err = o.cs.Decrypt(out, nil, ciphertext[:n])
		if err != nil {
			return nil, types.NewError(types.KindTamper, "noise open", err)
		}
		ciphertext = ciphertext[n:]
	}
	return out, nil
}
