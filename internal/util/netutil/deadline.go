// Package netutil 提供连接相关的小工具
package netutil

import (
	"context"
	"net"
	"time"
)

// deadliner 支持设置截止时间的连接
type deadliner interface {
	SetDeadline(t time.Time) error
}

// BindDeadline 将 ctx 与超时绑定到连接的截止时间上
//
// timeout 大于 0 时截止时间为 now+timeout。ctx 结束（取消或到期）时
// 立即将截止时间设为过去，使阻塞中的读写返回，此时 ctx.Err() 已经非空。
// 返回的函数解除绑定并清除截止时间。
func BindDeadline(ctx context.Context, conn net.Conn, timeout time.Duration) (release func()) {
	var d deadliner = conn

	if timeout > 0 {
		_ = d.SetDeadline(time.Now().Add(timeout))
	}

	stop := context.AfterFunc(ctx, func() {
		_ = d.SetDeadline(time.Unix(1, 0))
	})
	return func() {
		stop()
		_ = d.SetDeadline(time.Time{})
	}
}

// IsTimeout 是否为超时错误
func IsTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
