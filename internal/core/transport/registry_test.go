package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/transport/memory"
	"github.com/znx3p0/canary/internal/core/transport/tcp"
	"github.com/znx3p0/canary/pkg/types"
)

func TestRegistry_ForAndKinds(t *testing.T) {
	mem := memory.NewNetwork()
	r, err := NewRegistry(mem, tcp.New(tcp.Config{}))
	require.NoError(t, err)

	p, err := r.For(types.ProviderInsecureMem)
	require.NoError(t, err)
	assert.Same(t, mem, p)

	_, err = r.For(types.ProviderQUIC)
	assert.ErrorIs(t, err, ErrNoProvider)

	assert.Equal(t, []types.ProviderKind{
		types.ProviderInsecureMem, types.ProviderInsecureTCP, types.ProviderMemory, types.ProviderTCP,
	}, r.Kinds())
}

func TestRegistry_Duplicate(t *testing.T) {
	r, err := NewRegistry(memory.NewNetwork())
	require.NoError(t, err)

	err = r.Register(memory.NewNetwork())
	assert.ErrorIs(t, err, ErrDuplicateKind)

	_, err = NewRegistry(tcp.New(tcp.Config{}), tcp.New(tcp.Config{}))
	assert.ErrorIs(t, err, ErrDuplicateKind)
}

func TestProvide_AllKinds(t *testing.T) {
	mem := memory.NewNetwork()
	r, err := Provide(Params{Config: config.NewConfig(), Memory: mem})
	require.NoError(t, err)

	assert.ElementsMatch(t, types.ProviderKinds(), r.Kinds())

	p, err := r.For(types.ProviderMemory)
	require.NoError(t, err)
	assert.Same(t, mem, p)
	t.Log("✅ 全部内置提供者已注册")
}
