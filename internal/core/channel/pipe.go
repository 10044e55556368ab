package channel

import (
	"net"

	"github.com/znx3p0/canary/internal/core/codec"
	"github.com/znx3p0/canary/internal/core/framing"
	"github.com/znx3p0/canary/internal/core/security/insecure"
	"github.com/znx3p0/canary/pkg/types"
)

// Pipe 返回一对进程内相连的直通通道
func Pipe(format types.Format) (*Channel, *Channel, error) {
	c, err := codec.For(format)
	if err != nil {
		return nil, nil, err
	}
	a, b := net.Pipe()
	addr := types.NewAddress(types.ProviderInsecureMem, "pipe", "")
	sess := &insecure.Session{}

	left := New(a, sess, c, Info{Direction: types.DirOutbound, Protocol: insecure.ProtocolID, Address: addr}, framing.DefaultMaxFrameSize)
	right := New(b, sess, c, Info{Direction: types.DirInbound, Protocol: insecure.ProtocolID, Address: addr}, framing.DefaultMaxFrameSize)
	return left, right, nil
}
