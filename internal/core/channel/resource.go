package channel

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// resource 通道独占的底层连接
//
// 统一句柄关闭时直接关闭连接；拆分后两个半边各持一个引用，
// 最后一个引用释放时关闭连接。
type resource struct {
	conn   net.Conn
	refs   atomic.Int32
	closed atomic.Bool
	once   sync.Once
	err    error
}

func newResource(conn net.Conn) *resource {
	r := &resource{conn: conn}
	r.refs.Store(2)
	return r
}

func (r *resource) isClosed() bool {
	return r.closed.Load()
}

// close 立即关闭连接，幂等
func (r *resource) close() error {
	r.once.Do(func() {
		r.closed.Store(true)
		r.err = r.conn.Close()
	})
	return r.err
}

// release 释放一个引用
func (r *resource) release() error {
	if r.refs.Add(-1) <= 0 {
		return r.close()
	}
	return nil
}

// closeWrite 关闭写方向（连接支持半关闭时）
func (r *resource) closeWrite() {
	if hc, ok := r.conn.(interface{ CloseWrite() error }); ok {
		_ = hc.CloseWrite()
	}
}

// closeRead 关闭读方向
//
// 不支持半关闭的连接（net.Pipe、websocket）通过过期的读截止时间唤醒阻塞的读取。
func (r *resource) closeRead() {
	if hc, ok := r.conn.(interface{ CloseRead() error }); ok {
		_ = hc.CloseRead()
	}
	_ = r.conn.SetReadDeadline(time.Now())
}
