package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Identity 节点身份
type Identity struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
	id   string
}

// Generate 生成新身份
func Generate() (*Identity, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return FromPrivateKey(priv)
}

// FromSeed 从 32 字节种子恢复身份
func FromSeed(seed []byte) (*Identity, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: seed %d bytes", ErrInvalidKeySize, len(seed))
	}
	return FromPrivateKey(ed25519.NewKeyFromSeed(seed))
}

// FromPrivateKey 从 Ed25519 私钥创建身份
func FromPrivateKey(priv ed25519.PrivateKey) (*Identity, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key %d bytes", ErrInvalidKeySize, len(priv))
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &Identity{priv: priv, pub: pub, id: IDFromPublicKey(pub)}, nil
}

// ID 返回身份标识
func (i *Identity) ID() string {
	return i.id
}

// String 实现 fmt.Stringer
func (i *Identity) String() string {
	return i.id
}

// PublicKey 返回 Ed25519 公钥
func (i *Identity) PublicKey() ed25519.PublicKey {
	return i.pub
}

// Seed 返回私钥种子
func (i *Identity) Seed() []byte {
	return i.priv.Seed()
}

// Sign 签名
func (i *Identity) Sign(data []byte) []byte {
	return ed25519.Sign(i.priv, data)
}

// Verify 使用公钥验证签名
func Verify(pub ed25519.PublicKey, data, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, data, sig)
}

// ============================================================================
//                              身份标识
// ============================================================================

// IDFromPublicKey 由公钥计算身份标识
func IDFromPublicKey(pub ed25519.PublicKey) string {
	return base58.Encode(pub)
}

// PublicKeyFromID 由身份标识还原公钥
func PublicKeyFromID(id string) (ed25519.PublicKey, error) {
	raw, err := base58.Decode(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidID, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}

// ============================================================================
//                              X25519 派生
// ============================================================================

// StaticKey 返回用于 Noise DH 的 X25519 密钥对
//
// 私钥：种子的 SHA-512 前 32 字节并做 RFC 7748 clamping。
// 公钥：Edwards 点转换为 Montgomery u 坐标。
func (i *Identity) StaticKey() (priv, pub []byte, err error) {
	h := sha512.Sum512(i.priv.Seed())
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64

	pub, err = CurvePublicKey(i.pub)
	if err != nil {
		return nil, nil, err
	}
	return h[:32], pub, nil
}

// CurvePublicKey 将 Ed25519 公钥转换为 X25519 公钥
func CurvePublicKey(pub ed25519.PublicKey) ([]byte, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: public key %d bytes", ErrInvalidKeySize, len(pub))
	}
	point, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("decode ed25519 point: %w", err)
	}
	return point.BytesMontgomery(), nil
}
