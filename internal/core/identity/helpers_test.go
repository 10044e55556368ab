package identity

import "golang.org/x/crypto/curve25519"

func x25519(priv, pub []byte) ([]byte, error) {
	return curve25519.X25519(priv, pub)
}
