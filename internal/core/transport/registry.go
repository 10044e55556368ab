package transport

import (
	"fmt"
	"sort"
	"sync"

	"github.com/znx3p0/canary/pkg/interfaces"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

var logger = log.Logger("core/transport")

// Registry 地址类型到提供者的映射
type Registry struct {
	mu        sync.RWMutex
	providers map[types.ProviderKind]interfaces.Provider
}

// NewRegistry 创建注册表并注册给定的提供者
func NewRegistry(providers ...interfaces.Provider) (*Registry, error) {
	r := &Registry{providers: make(map[types.ProviderKind]interfaces.Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register 注册提供者处理的所有地址类型
func (r *Registry) Register(p interfaces.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range p.Kinds() {
		if _, exists := r.providers[k]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateKind, k)
		}
	}
	for _, k := range p.Kinds() {
		r.providers[k] = p
	}
	logger.Debug("提供者已注册", "kinds", p.Kinds())
	return nil
}

// For 返回地址类型对应的提供者
func (r *Registry) For(kind types.ProviderKind) (interfaces.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, kind)
	}
	return p, nil
}

// Kinds 返回已注册的地址类型
func (r *Registry) Kinds() []types.ProviderKind {
	r.mu.RLock()
	out := make([]types.ProviderKind, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
