package memory

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetwork_DialListen(t *testing.T) {
	n := NewNetwork()
	ln, err := n.Listen(context.Background(), "node-a")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err := n.Dial(context.Background(), "node-a")
	require.NoError(t, err)
	defer client.Close()
	server := <-accepted
	defer server.Close()

	assert.Equal(t, "node-a", client.RemoteAddr().String())
	assert.Equal(t, "memory", server.LocalAddr().Network())

	go func() { _, _ = client.Write([]byte("abc")) }()
	buf := make([]byte, 3)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(buf))
}

func TestNetwork_Errors(t *testing.T) {
	n := NewNetwork()

	_, err := n.Dial(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrConnectionRefused)

	ln, err := n.Listen(context.Background(), "x")
	require.NoError(t, err)
	_, err = n.Listen(context.Background(), "x")
	assert.ErrorIs(t, err, ErrAddressInUse)

	require.NoError(t, ln.Close())
	require.NoError(t, ln.Close())
	_, err = ln.Accept()
	assert.ErrorIs(t, err, net.ErrClosed)

	// 关闭后名称可以重新使用
	ln2, err := n.Listen(context.Background(), "x")
	require.NoError(t, err)
	defer ln2.Close()
}

func TestNetwork_DialCancelled(t *testing.T) {
	n := NewNetwork()
	ln, err := n.Listen(context.Background(), "busy")
	require.NoError(t, err)
	defer ln.Close()

	// 无人 Accept 时 ctx 到期返回
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = n.Dial(ctx, "busy")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNetwork_RandomName(t *testing.T) {
	n := NewNetwork()
	ln, err := n.Listen(context.Background(), "")
	require.NoError(t, err)
	defer ln.Close()
	assert.NotEmpty(t, ln.Endpoint())
	assert.Same(t, Default(), Default())
}
