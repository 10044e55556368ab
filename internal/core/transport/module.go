package transport

import (
	"go.uber.org/fx"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/transport/memory"
	"github.com/znx3p0/canary/internal/core/transport/quic"
	"github.com/znx3p0/canary/internal/core/transport/tcp"
	"github.com/znx3p0/canary/internal/core/transport/unix"
	"github.com/znx3p0/canary/internal/core/transport/websocket"
	"github.com/znx3p0/canary/pkg/interfaces"
)

// Params 模块输入
type Params struct {
	fx.In

	Config *config.Config

	// Memory 调用方提供的进程内网络，缺省使用 memory.Default()
	Memory *memory.Network `optional:"true"`

	// Extra 调用方追加的提供者
	Extra []interfaces.Provider `group:"providers"`
}

// Module 传输模块
func Module() fx.Option {
	return fx.Module("transport",
		fx.Provide(Provide),
	)
}

// Provide 按配置构造全部内置提供者
func Provide(p Params) (*Registry, error) {
	tc := p.Config.Transport

	mem := p.Memory
	if mem == nil {
		mem = memory.Default()
	}

	providers := []interfaces.Provider{
		tcp.New(tcp.Config{
			DialTimeout: tc.DialTimeout.Duration(),
			KeepAlive:   tc.KeepAlive.Duration(),
		}),
		unix.New(unix.Config{DialTimeout: tc.DialTimeout.Duration()}),
		quic.New(quic.Config{
			MaxIdleTimeout:  tc.QUIC.MaxIdleTimeout.Duration(),
			KeepAlivePeriod: tc.QUIC.KeepAlivePeriod.Duration(),
		}),
		websocket.New(websocket.Config{
			Path:             tc.WebSocket.Path,
			HandshakeTimeout: tc.DialTimeout.Duration(),
			MaxMessageSize:   2 * int64(tc.MaxFrameSize),
		}),
		mem,
	}
	providers = append(providers, p.Extra...)

	return NewRegistry(providers...)
}
