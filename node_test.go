package canary

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/internal/core/dial"
	"github.com/znx3p0/canary/internal/core/identity"
	"github.com/znx3p0/canary/internal/core/metrics"
	"github.com/znx3p0/canary/internal/core/security"
	"github.com/znx3p0/canary/internal/core/transport"
	"github.com/znx3p0/canary/internal/core/upgrader"
)

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Dial.InitialInterval = config.Duration(10 * time.Millisecond)
	cfg.Dial.MaxInterval = config.Duration(50 * time.Millisecond)
	cfg.Dial.MaxRetries = 2
	cfg.Security.HandshakeTimeout = config.Duration(2 * time.Second)
	cfg.Security.NegotiateTimeout = config.Duration(2 * time.Second)
	return cfg
}

func newTestNode(t *testing.T, mem *MemoryNetwork, opts ...Option) *Node {
	t.Helper()
	base := []Option{
		WithConfig(testConfig()),
		WithMemoryNetwork(mem),
		WithMetricsRegistry(prometheus.NewRegistry()),
		WithRoute(NewRoute("root")),
	}
	n, err := New(context.Background(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })
	return n
}

// mathRoute 注册 Math/Add：接收一组整数，回复它们的和
func mathRoute(t *testing.T) *Route {
	t.Helper()
	r := NewRoute("root")
	m, err := r.AddRoute("Math")
	require.NoError(t, err)
	require.NoError(t, m.RegisterService("Add", func(ctx context.Context, ch *Channel) error {
		args, err := Receive[[]int](ch)
		if err != nil {
			return err
		}
		sum := 0
		for _, a := range args {
			sum += a
		}
		return ch.Send(sum)
	}))
	return r
}

func TestNode_MathAdd(t *testing.T) {
	for _, addr := range []string{"mem@math", "imem@math", "tcp@127.0.0.1:0", "itcp@127.0.0.1:0"} {
		t.Run(addr, func(t *testing.T) {
			mem := NewMemoryNetwork()
			server := newTestNode(t, mem, WithRoute(mathRoute(t)))
			client := newTestNode(t, mem)

			bound, err := server.Bind(context.Background(), MustParseAddress(addr))
			require.NoError(t, err)

			ch, err := client.Connect(context.Background(), AddressFor(bound, "Math/Add"))
			require.NoError(t, err)
			defer ch.Close()

			require.NoError(t, ch.Send([]int{2, 3}))
			sum, err := Receive[int](ch)
			require.NoError(t, err)
			assert.Equal(t, 5, sum)

			// 服务返回后通道关闭
			_, err = Receive[int](ch)
			assert.ErrorIs(t, err, ErrEndOfStream)
			assert.Equal(t, bound.Secure(), ch.Info().Encrypted)
		})
	}
	t.Log("✅ Math/Add 返回 5")
}

func TestNode_SecurityKindMismatch(t *testing.T) {
	for _, addr := range []string{"tcp@127.0.0.1:0", "itcp@127.0.0.1:0", "mem@kinds", "imem@kinds"} {
		t.Run(addr, func(t *testing.T) {
			mem := NewMemoryNetwork()
			server := newTestNode(t, mem, WithRoute(mathRoute(t)))
			client := newTestNode(t, mem)

			bound, err := server.Bind(context.Background(), MustParseAddress(addr))
			require.NoError(t, err)

			// 同一端点，换成相反的安全模式
			flipped := AddressFor(bound, "Math/Add")
			flipped.Provider = flipped.Provider.WithSecurity(!bound.Secure())

			_, err = client.Connect(context.Background(), flipped, WithoutBackoff())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrHandshake)

			ch, err := client.Connect(context.Background(), AddressFor(bound, "Math/Add"))
			require.NoError(t, err)
			defer ch.Close()
			assert.Equal(t, bound.Secure(), ch.Info().Encrypted)
		})
	}
	t.Log("✅ 监听端只接受绑定时的安全模式")
}

func TestNode_NotFound(t *testing.T) {
	mem := NewMemoryNetwork()
	server := newTestNode(t, mem, WithRoute(mathRoute(t)))
	client := newTestNode(t, mem)

	bound, err := server.Bind(context.Background(), MustParseAddress("imem@math"))
	require.NoError(t, err)

	for _, path := range []string{"Math/Sub", "Math", "Physics/Add", "Math/Add/Deeper"} {
		_, err = client.Connect(context.Background(), bound.WithPath(path))
		assert.ErrorIs(t, err, ErrNotFound, path)
	}
}

func TestNode_RelayToDirect(t *testing.T) {
	mem := NewMemoryNetwork()

	// C 提供直连服务，回复自己的路径
	c := newTestNode(t, mem)
	require.NoError(t, c.Route().RegisterService("direct", func(ctx context.Context, ch *Channel) error {
		rc, ok := RouteFromContext(ctx)
		if !ok {
			return ch.Send("")
		}
		return ch.Send(rc.Path)
	}))
	cBound, err := c.Bind(context.Background(), MustParseAddress("mem@node-c"))
	require.NoError(t, err)

	// B 把 C 的地址交给对端
	b := newTestNode(t, mem)
	require.NoError(t, b.Route().RegisterService("relay", func(ctx context.Context, ch *Channel) error {
		return ch.Send(AddressFor(cBound, "direct").String())
	}))
	bBound, err := b.Bind(context.Background(), MustParseAddress("mem@node-b"))
	require.NoError(t, err)

	a := newTestNode(t, mem)
	relay, err := a.Connect(context.Background(), bBound.Join("relay"))
	require.NoError(t, err)
	defer relay.Close()

	handoff, err := Receive[string](relay)
	require.NoError(t, err)
	assert.Equal(t, "mem@node-c://direct", handoff)

	direct, err := a.ConnectString(context.Background(), handoff, WithPeer(c.ID()))
	require.NoError(t, err)
	defer direct.Close()

	path, err := Receive[string](direct)
	require.NoError(t, err)
	assert.Equal(t, "direct", path)
	assert.Equal(t, c.ID(), direct.Info().RemotePeer)
	t.Log("✅ 中继交接后直连成功")
}

func TestNode_PeerPinning(t *testing.T) {
	mem := NewMemoryNetwork()
	server := newTestNode(t, mem, WithRoute(mathRoute(t)))
	client := newTestNode(t, mem)
	other := newTestNode(t, mem)

	bound, err := server.Bind(context.Background(), MustParseAddress("mem@pinned"))
	require.NoError(t, err)

	ch, err := client.Connect(context.Background(), bound.Join("Math", "Add"), WithPeer(server.ID()))
	require.NoError(t, err)
	_ = ch.Close()

	_, err = client.Connect(context.Background(), bound.Join("Math", "Add"), WithPeer(other.ID()))
	assert.ErrorIs(t, err, ErrHandshake)
}

func TestNode_Formats(t *testing.T) {
	mem := NewMemoryNetwork()
	server := newTestNode(t, mem, WithRoute(mathRoute(t)))
	bound, err := server.Bind(context.Background(), MustParseAddress("imem@formats"))
	require.NoError(t, err)

	for _, f := range []Format{FormatBincode, FormatJSON, FormatBSON, FormatPostcard, FormatMessagePack} {
		t.Run(f.String(), func(t *testing.T) {
			client := newTestNode(t, mem, WithFormat(f))
			ch, err := client.Connect(context.Background(), bound.Join("Math", "Add"))
			require.NoError(t, err)
			defer ch.Close()
			assert.Equal(t, f, ch.Format())

			require.NoError(t, ch.Send([]int{40, 2}))
			sum, err := Receive[int](ch)
			require.NoError(t, err)
			assert.Equal(t, 42, sum)
		})
	}
}

func TestNode_RejectedFormat(t *testing.T) {
	mem := NewMemoryNetwork()
	cfg := testConfig()
	cfg.Codec.Accept = []string{"json"}
	server := newTestNode(t, mem, WithConfig(cfg), WithRoute(mathRoute(t)))
	client := newTestNode(t, mem)

	bound, err := server.Bind(context.Background(), MustParseAddress("imem@strict"))
	require.NoError(t, err)

	_, err = client.Connect(context.Background(), bound.Join("Math", "Add"), WithConnectFormat(FormatMessagePack))
	assert.ErrorIs(t, err, ErrRejected)

	ch, err := client.Connect(context.Background(), bound.Join("Math", "Add"), WithConnectFormat(FormatJSON))
	require.NoError(t, err)
	_ = ch.Close()
}

func TestNode_ConnectRefused(t *testing.T) {
	client := newTestNode(t, NewMemoryNetwork())

	_, err := client.Connect(context.Background(), MustParseAddress("imem@nobody://x"), WithoutBackoff())
	assert.ErrorIs(t, err, ErrTransport)

	_, err = client.Connect(context.Background(), MustParseAddress("imem@nobody://x"))
	assert.ErrorIs(t, err, ErrTransport)

	_, err = client.ConnectString(context.Background(), "smtp@host:25")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestNode_Close(t *testing.T) {
	mem := NewMemoryNetwork()
	n := newTestNode(t, mem, WithRoute(mathRoute(t)))

	bound, err := n.Bind(context.Background(), MustParseAddress("imem@closing"))
	require.NoError(t, err)
	assert.Equal(t, []Address{bound}, n.Bound())
	assert.Equal(t, StateRunning, n.State())

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	assert.Equal(t, StateStopped, n.State())
	assert.Empty(t, n.Bound())

	_, err = n.Bind(context.Background(), MustParseAddress("imem@again"))
	assert.ErrorIs(t, err, ErrNodeClosed)
	_, err = n.Connect(context.Background(), bound.Join("Math", "Add"))
	assert.ErrorIs(t, err, ErrNodeClosed)

	// 监听器已释放
	client := newTestNode(t, mem)
	_, err = client.Connect(context.Background(), bound.Join("Math", "Add"), WithoutBackoff())
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNode_ServiceSeesCancellation(t *testing.T) {
	mem := NewMemoryNetwork()
	cancelled := make(chan struct{})
	r := NewRoute("root")
	require.NoError(t, r.RegisterService("block", func(ctx context.Context, ch *Channel) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}))
	server := newTestNode(t, mem, WithRoute(r))
	client := newTestNode(t, mem)

	bound, err := server.Bind(context.Background(), MustParseAddress("imem@block"))
	require.NoError(t, err)
	ch, err := client.Connect(context.Background(), bound.Join("block"))
	require.NoError(t, err)
	defer ch.Close()

	require.NoError(t, server.Close())
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("service context not cancelled on close")
	}
}

func TestNode_Metrics(t *testing.T) {
	mem := NewMemoryNetwork()
	reg := prometheus.NewRegistry()
	server := newTestNode(t, mem, WithRoute(mathRoute(t)), WithMetricsRegistry(reg))
	client := newTestNode(t, mem, WithMetricsRegistry(reg))

	bound, err := server.Bind(context.Background(), MustParseAddress("mem@metrics"))
	require.NoError(t, err)

	ch, err := client.Connect(context.Background(), bound.Join("Math", "Add"))
	require.NoError(t, err)
	require.NoError(t, ch.Send([]int{1}))
	_, err = Receive[int](ch)
	require.NoError(t, err)
	_ = ch.Close()

	_, err = client.Connect(context.Background(), bound.Join("Math", "Sub"))
	require.ErrorIs(t, err, ErrNotFound)

	// inbound/mem 与 outbound/mem
	count, err := testutil.GatherAndCount(reg, "canary_channels_opened_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "canary_dispatch_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count, 2)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(context.Background(), WithConfig(nil))
	assert.ErrorIs(t, err, ErrNilConfig)

	_, err = New(context.Background(), WithFormat(Format(42)))
	assert.Error(t, err)

	cfg := config.NewConfig()
	cfg.Transport.MaxFrameSize = 0
	_, err = New(context.Background(), WithConfig(cfg))
	assert.Error(t, err)
}

func TestModules_Lifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enable = false

	var (
		d *dial.Dialer
		m *metrics.Metrics
	)
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Supply(NewMemoryNetwork()),
		identity.Module(),
		metrics.Module(),
		transport.Module(),
		security.Module(),
		upgrader.Module(),
		dial.Module(),
		fx.Populate(&d, &m),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, d)
	assert.Nil(t, m)
}
