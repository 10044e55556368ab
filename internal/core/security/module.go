package security

import (
	"go.uber.org/fx"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/identity"
	"github.com/znx3p0/canary/internal/core/security/insecure"
	"github.com/znx3p0/canary/internal/core/security/noise"
	"github.com/znx3p0/canary/pkg/lib/log"
)

var logger = log.Logger("core/security")

// Params 模块输入
type Params struct {
	fx.In

	Config   *config.Config
	Identity *identity.Identity
}

// Module 安全模块
func Module() fx.Option {
	return fx.Module("security",
		fx.Provide(Provide),
	)
}

// Provide 根据配置构造安全传输集合
func Provide(p Params) (*Transports, error) {
	sec := p.Config.Security
	nt, err := noise.New(p.Identity, noise.Config{
		HandshakeTimeout: sec.HandshakeTimeout.Duration(),
		PreSharedKey:     noise.DerivePSK(sec.PreSharedKey),
	})
	if err != nil {
		return nil, err
	}

	var plain *insecure.Transport
	if sec.AllowInsecure {
		plain = insecure.New(p.Identity.ID())
	}

	t := NewTransports(nt, plain)
	logger.Debug("安全传输就绪", "protocols", t.IDs(), "psk", sec.PreSharedKey != "")
	return t, nil
}
