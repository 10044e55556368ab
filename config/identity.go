package config

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyFile Ed25519 种子 PEM 文件
	// 为空时每次启动生成临时身份；文件不存在时生成并保存
	KeyFile string `json:"key_file,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{}
}

// Validate 校验
func (c IdentityConfig) Validate() error {
	return nil
}
