package noise

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

const (
	fieldIdentityKey protowire.Number = 1
	fieldIdentitySig protowire.Number = 2
)

// payloadSigPrefix 签名前缀
const payloadSigPrefix = "canary-noise-static:"

// handshakePayload 握手负载
type handshakePayload struct {
	IdentityKey []byte
	IdentitySig []byte
}

func (p handshakePayload) marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldIdentityKey, protowire.BytesType)
	b = protowire.AppendBytes(b, p.IdentityKey)
	b = protowire.AppendTag(b, fieldIdentitySig, protowire.BytesType)
	b = protowire.AppendBytes(b, p.IdentitySig)
	return b
}

func unmarshalPayload(b []byte) (handshakePayload, error) {
	var p handshakePayload
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return p, fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldIdentityKey && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return p, fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(m))
			}
			p.IdentityKey = append([]byte(nil), v...)
			n = m
		case num == fieldIdentitySig && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return p, fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(m))
			}
			p.IdentitySig = append([]byte(nil), v...)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return p, fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
			}
		}
		b = b[n:]
	}
	if len(p.IdentityKey) == 0 || len(p.IdentitySig) == 0 {
		return p, fmt.Errorf("%w: missing identity", ErrInvalidPayload)
	}
	return p, nil
}

func signedStatic(static []byte) []byte {
	return append([]byte(payloadSigPrefix), static...)
}
