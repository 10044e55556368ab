package insecure

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassthrough(t *testing.T) {
	c, s := net.Pipe()
	defer c.Close()
	defer s.Close()

	tr := New("local")
	sess, err := tr.SecureOutbound(context.Background(), c, "ignored")
	require.NoError(t, err)

	assert.False(t, sess.Encrypted())
	assert.Equal(t, ProtocolID, sess.Protocol())
	assert.Equal(t, "local", sess.LocalPeer())
	assert.Empty(t, sess.RemotePeer())

	ct, err := sess.Sealer().Seal([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(ct))

	pt, err := sess.Opener().Open(ct)
	require.NoError(t, err)
	assert.Equal(t, "plain", string(pt))

	in, err := tr.SecureInbound(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, tr.ID(), in.Protocol())
}
