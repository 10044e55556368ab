package channel

import (
	"errors"
	"io"
	"net"

	"github.com/znx3p0/canary/internal/util/netutil"
	"github.com/znx3p0/canary/pkg/types"
)

var (
	// ErrEncode 值无法按协商格式编码
	ErrEncode = errors.New("channel: encode failed")
)

// classify 将底层 I/O 错误映射到错误类别
func classify(op string, res *resource, err error) error {
	if err == nil {
		return nil
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}
	switch {
	case res.isClosed():
		return types.NewError(types.KindCancelled, op, err)
	case errors.Is(err, io.EOF):
		return types.NewError(types.KindEndOfStream, op, err)
	case errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
		return types.NewError(types.KindEndOfStream, op, err)
	case netutil.IsTimeout(err):
		return types.NewError(types.KindCancelled, op, err)
	default:
		return types.NewError(types.KindTransport, op, err)
	}
}
