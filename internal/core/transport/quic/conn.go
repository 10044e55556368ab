package quic

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// closeGrace 关闭流之后等待对端读完的时间，超时后关闭 QUIC 连接
const closeGrace = 3 * time.Second

// streamConn 将 QUIC 连接上的一条双向流适配为 net.Conn
//
// 每个通道独占一条 QUIC 连接与其上的一条流。
type streamConn struct {
	conn   *quic.Conn
	stream *quic.Stream
}

var _ net.Conn = (*streamConn)(nil)

func newStreamConn(conn *quic.Conn, stream *quic.Stream) *streamConn {
	return &streamConn{conn: conn, stream: stream}
}

func (c *streamConn) Read(p []byte) (int, error) {
	n, err := c.stream.Read(p)
	return n, mapError(err)
}

func (c *streamConn) Write(p []byte) (int, error) {
	n, err := c.stream.Write(p)
	return n, mapError(err)
}

// Close 关闭流，并在对端关闭或宽限期结束后关闭连接
func (c *streamConn) Close() error {
	err := c.stream.Close()
	c.stream.CancelRead(0)

	go func() {
		t := time.NewTimer(closeGrace)
		defer t.Stop()
		select {
		case <-c.conn.Context().Done():
		case <-t.C:
		}
		_ = c.conn.CloseWithError(0, "")
	}()
	return err
}

// CloseWrite 发送 FIN
func (c *streamConn) CloseWrite() error {
	return c.stream.Close()
}

// CloseRead 停止接收
func (c *streamConn) CloseRead() error {
	c.stream.CancelRead(0)
	return nil
}

func (c *streamConn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *streamConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *streamConn) SetDeadline(t time.Time) error      { return c.stream.SetDeadline(t) }
func (c *streamConn) SetReadDeadline(t time.Time) error  { return c.stream.SetReadDeadline(t) }
func (c *streamConn) SetWriteDeadline(t time.Time) error { return c.stream.SetWriteDeadline(t) }

// mapError 将对端的正常关闭映射为 io.EOF
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *quic.ApplicationError
	if errors.As(err, &appErr) && appErr.ErrorCode == 0 {
		return io.EOF
	}
	var streamErr *quic.StreamError
	if errors.As(err, &streamErr) && streamErr.ErrorCode == 0 {
		return io.EOF
	}
	if errors.Is(err, context.Canceled) {
		return net.ErrClosed
	}
	return err
}
