package unix

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/znx3p0/canary/pkg/types"
)

func sockPath(t *testing.T) string {
	t.Helper()
	// 套接字路径长度有限，避免使用过深的临时目录
	dir, err := os.MkdirTemp("", "cnry")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestProvider_DialListen(t *testing.T) {
	p := New(Config{DialTimeout: time.Second})
	assert.Contains(t, p.Kinds(), types.ProviderInsecureUnix)

	path := sockPath(t)
	ln, err := p.Listen(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, ln.Endpoint())

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	client, err := p.Dial(context.Background(), path)
	require.NoError(t, err)
	defer client.Close()
	server := <-accepted
	defer server.Close()

	go func() { _, _ = client.Write([]byte("hi")) }()
	buf := make([]byte, 2)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(buf))

	require.NoError(t, ln.Close())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestProvider_StaleSocket(t *testing.T) {
	p := New(Config{})
	path := sockPath(t)

	// 留下一个无人监听的套接字文件
	raw, err := net.Listen("unix", path)
	require.NoError(t, err)
	raw.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, raw.Close())

	ln, err := p.Listen(context.Background(), path)
	require.NoError(t, err)
	defer ln.Close()

	// 正在使用的套接字不会被抢占
	_, err = p.Listen(context.Background(), path)
	assert.Error(t, err)
}

func TestProvider_NotASocket(t *testing.T) {
	p := New(Config{})
	path := sockPath(t)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := p.Listen(context.Background(), path)
	assert.Error(t, err)
}
