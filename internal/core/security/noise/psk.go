package noise

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	pskSalt = "canary-psk-v1"
	pskInfo = "noise psk3"
)

// DerivePSK 由口令派生 32 字节预共享密钥（HKDF-SHA256）
//
// 口令为空时返回 nil，表示不使用预共享密钥。
func DerivePSK(passphrase string) []byte {
	if passphrase == "" {
		return nil
	}
	r := hkdf.New(sha256.New, []byte(passphrase), []byte(pskSalt), []byte(pskInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf 在输出长度不超过 255*HashLen 时不会失败
		panic(err)
	}
	return key
}
