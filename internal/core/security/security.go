package security

import (
	"fmt"

	"github.com/znx3p0/canary/internal/core/security/insecure"
	"github.com/znx3p0/canary/internal/core/security/noise"
	"github.com/znx3p0/canary/pkg/interfaces"
)

// Transports 已启用的安全传输集合
type Transports struct {
	secure   interfaces.SecureTransport
	insecure interfaces.SecureTransport
	byID     map[string]interfaces.SecureTransport
}

// NewTransports 创建集合，insecure 为 nil 表示禁止直通
func NewTransports(secure *noise.Transport, plain *insecure.Transport) *Transports {
	t := &Transports{secure: secure, byID: map[string]interfaces.SecureTransport{secure.ID(): secure}}
	if plain != nil {
		t.insecure = plain
		t.byID[plain.ID()] = plain
	}
	return t
}

// For 按是否加密选择
func (t *Transports) For(encrypted bool) (interfaces.SecureTransport, error) {
	if encrypted {
		return t.secure, nil
	}
	if t.insecure == nil {
		return nil, ErrInsecureDisabled
	}
	return t.insecure, nil
}

// ByID 按协议标识查找
func (t *Transports) ByID(id string) (interfaces.SecureTransport, error) {
	st, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProtocol, id)
	}
	return st, nil
}

// IDs 返回所有启用的协议标识，加密协议在前
func (t *Transports) IDs() []string {
	ids := []string{t.secure.ID()}
	if t.insecure != nil {
		ids = append(ids, t.insecure.ID())
	}
	return ids
}
