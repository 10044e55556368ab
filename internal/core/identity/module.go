package identity

import (
	"go.uber.org/fx"

	"github.com/znx3p0/canary/config"
)

// Params 模块输入
type Params struct {
	fx.In

	Config *config.Config

	// Identity 调用方直接提供的身份，优先于配置
	Identity *Identity `name:"user_identity" optional:"true"`
}

// Module 身份模块
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(Provide),
	)
}

// Provide 提供节点身份
func Provide(p Params) (*Identity, error) {
	if p.Identity != nil {
		return p.Identity, nil
	}
	id, err := LoadOrGenerate(p.Config.Identity.KeyFile)
	if err != nil {
		return nil, err
	}
	logger.Debug("节点身份就绪", "id", id.ID())
	return id, nil
}
