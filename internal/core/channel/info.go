package channel

import (
	"github.com/google/uuid"

	"github.com/znx3p0/canary/pkg/types"
)

// Info 通道元信息，构造后不变
type Info struct {
	// ID 通道标识，用于日志
	ID string

	// Direction 入站或出站
	Direction types.Direction

	// Format 协商的编码格式
	Format types.Format

	// Protocol 安全协议标识
	Protocol string

	// Encrypted 是否加密
	Encrypted bool

	// LocalPeer 本地身份
	LocalPeer string

	// RemotePeer 远端身份，直通会话为空
	RemotePeer string

	// Address 远端端点与当前绑定的路径
	Address types.Address
}

func (i Info) withDefaults() Info {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return i
}

// logArgs 日志字段
func (i Info) logArgs() []any {
	return []any{
		"channel", i.ID,
		"direction", i.Direction.String(),
		"address", i.Address.String(),
	}
}
