package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/znx3p0/canary/internal/core/channel"
	"github.com/znx3p0/canary/internal/core/metrics"
	"github.com/znx3p0/canary/pkg/lib/log"
	"github.com/znx3p0/canary/pkg/types"
)

type addArgs struct {
	A int `json:"a" msgpack:"a" bson:"a" cbor:"1,keyasint"`
	B int `json:"b" msgpack:"b" bson:"b" cbor:"2,keyasint"`
}

func pipe(t *testing.T) (client, server *channel.Channel) {
	t.Helper()
	client, server, err := channel.Pipe(types.FormatJSON)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

func dispatchAsync(r *Route, path string, ch *channel.Channel) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- r.Dispatch(context.Background(), path, ch) }()
	return errCh
}

func expectStatus(t *testing.T, ch *channel.Channel) types.Status {
	t.Helper()
	st, err := channel.Receive[types.Status](ch)
	require.NoError(t, err)
	return st
}

func TestRoute_RegisterConflict(t *testing.T) {
	r := New("root")
	var first, second atomic.Int32

	require.NoError(t, r.RegisterService("echo", func(context.Context, *channel.Channel) error {
		first.Add(1)
		return nil
	}))
	err := r.RegisterService("echo", func(context.Context, *channel.Channel) error {
		second.Add(1)
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrConflict)

	_, err = r.AddRoute("echo")
	assert.ErrorIs(t, err, types.ErrConflict)

	// 第一次注册保持不变
	client, server := pipe(t)
	errCh := dispatchAsync(r, "echo", server)
	assert.Equal(t, types.StatusFound, expectStatus(t, client).Code)
	require.NoError(t, <-errCh)
	r.Wait()
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(0), second.Load())
	t.Log("✅ 重复注册返回 Conflict")
}

func TestRoute_InvalidRegistration(t *testing.T) {
	r := New("root")
	assert.ErrorIs(t, r.RegisterService("", func(context.Context, *channel.Channel) error { return nil }), ErrEmptyName)
	assert.ErrorIs(t, r.RegisterService("a/b", func(context.Context, *channel.Channel) error { return nil }), ErrEmptyName)
	assert.ErrorIs(t, r.RegisterService("x", nil), ErrNilService)
	assert.ErrorIs(t, r.RegisterRoute("x", nil), ErrNilRoute)
	assert.Error(t, r.RegisterRoute("self", r))
	assert.Empty(t, r.Names())
}

func TestRoute_DispatchNested(t *testing.T) {
	r := New("root")
	a, err := r.AddRoute("A")
	require.NoError(t, err)

	var calls atomic.Int32
	require.NoError(t, a.RegisterService("B", func(context.Context, *channel.Channel) error {
		calls.Add(1)
		return nil
	}))

	client, server := pipe(t)
	errCh := dispatchAsync(r, "A/B", server)
	assert.Equal(t, types.StatusFound, expectStatus(t, client).Code)
	require.NoError(t, <-errCh)
	r.Wait()
	assert.Equal(t, int32(1), calls.Load())

	client2, server2 := pipe(t)
	errCh = dispatchAsync(r, "A/Z", server2)
	st := expectStatus(t, client2)
	err = <-errCh
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.Equal(t, types.StatusNotFound, st.Code)
	assert.ErrorIs(t, st.Err(), types.ErrNotFound)
	r.Wait()
	assert.Equal(t, int32(1), calls.Load())
	t.Log("✅ A/B 调用一次，A/Z 返回 NotFound")
}

func TestRoute_Lookup(t *testing.T) {
	r := New("root")
	m, err := r.AddRoute("Math")
	require.NoError(t, err)
	require.NoError(t, m.RegisterService("Add", func(context.Context, *channel.Channel) error { return nil }))

	tests := []struct {
		path  string
		found bool
	}{
		{"Math/Add", true},
		{"/Math//Add/", true},
		{"Math", false},
		{"Math/Add/More", false},
		{"Math/Sub", false},
		{"", false},
		{"Other", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			svc, err := r.Lookup(tt.path)
			if tt.found {
				require.NoError(t, err)
				assert.NotNil(t, svc)
				return
			}
			assert.ErrorIs(t, err, types.ErrNotFound)
		})
	}
}

func TestRoute_MathScenario(t *testing.T) {
	r := New("root")
	m, err := r.AddRoute("Math")
	require.NoError(t, err)

	observed := make(chan addArgs, 1)
	require.NoError(t, m.RegisterService("Add", func(_ context.Context, ch *channel.Channel) error {
		args, err := channel.Receive[addArgs](ch)
		if err != nil {
			return err
		}
		observed <- args
		return ch.Send(args.A + args.B)
	}))

	client, server := pipe(t)
	errCh := dispatchAsync(r, "Math/Add", server)
	require.NoError(t, expectStatus(t, client).Err())
	require.NoError(t, <-errCh)
	require.NoError(t, client.Send(addArgs{A: 2, B: 3}))

	sum, err := channel.Receive[int](client)
	require.NoError(t, err)
	assert.Equal(t, 5, sum)
	assert.Equal(t, addArgs{A: 2, B: 3}, <-observed)

	client2, server2 := pipe(t)
	errCh = dispatchAsync(r, "Math/Sub", server2)
	assert.ErrorIs(t, expectStatus(t, client2).Err(), types.ErrNotFound)
	assert.ErrorIs(t, <-errCh, types.ErrNotFound)
}

func TestRoute_ServiceFailureIsLogged(t *testing.T) {
	capture := log.NewCapture()
	restore := capture.Install()
	defer restore()

	r := New("root")
	r.SetMetrics(mustMetrics(t))
	require.NoError(t, r.RegisterService("fail", func(context.Context, *channel.Channel) error {
		return errors.New("boom")
	}))

	client, server := pipe(t)
	errCh := dispatchAsync(r, "fail", server)
	assert.Equal(t, types.StatusFound, expectStatus(t, client).Code)
	require.NoError(t, <-errCh)
	r.Wait()

	e, ok := capture.Find(func(e log.Entry) bool {
		return e.Level == slog.LevelError && e.Attrs["path"] == "fail"
	})
	require.True(t, ok, "service failure must be logged")
	assert.Equal(t, "core/route", e.Attrs["component"])
	assert.Contains(t, fmt.Sprint(e.Attrs["err"]), "boom")
	t.Log("✅ 服务失败写入日志，不传回调用方")
}

func TestRoute_PanicIsolation(t *testing.T) {
	capture := log.NewCapture()
	restore := capture.Install()
	defer restore()

	r := New("root")
	require.NoError(t, r.RegisterService("panic", func(context.Context, *channel.Channel) error {
		panic("kaboom")
	}))
	var ok atomic.Int32
	require.NoError(t, r.RegisterService("ok", func(context.Context, *channel.Channel) error {
		ok.Add(1)
		return nil
	}))

	c1, s1 := pipe(t)
	errCh := dispatchAsync(r, "panic", s1)
	expectStatus(t, c1)
	require.NoError(t, <-errCh)
	r.Wait()

	c2, s2 := pipe(t)
	errCh = dispatchAsync(r, "ok", s2)
	expectStatus(t, c2)
	require.NoError(t, <-errCh)
	r.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, []string{"ok", "panic"}, r.Names())

	_, found := capture.Find(func(e log.Entry) bool {
		return e.Level == slog.LevelError && e.Attrs["panic"] == "kaboom"
	})
	assert.True(t, found)

	// panic 后通道被关闭
	_, err := channel.Receive[int](c1)
	assert.True(t, types.IsTerminal(err))
}

func TestRoute_DispatchDoesNotBlock(t *testing.T) {
	r := New("root")
	release := make(chan struct{})
	require.NoError(t, r.RegisterService("slow", func(context.Context, *channel.Channel) error {
		<-release
		return nil
	}))

	client, server := pipe(t)
	done := make(chan error, 1)
	go func() { done <- r.Dispatch(context.Background(), "slow", server) }()
	expectStatus(t, client)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on service")
	}

	// 服务执行期间注册表可写
	require.NoError(t, r.RegisterService("other", func(context.Context, *channel.Channel) error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.WaitContext(ctx), context.DeadlineExceeded)

	close(release)
	r.Wait()
}

func TestRoute_ServiceContext(t *testing.T) {
	r := New("root")
	sub, err := r.AddRoute("svc")
	require.NoError(t, err)

	got := make(chan Ctx, 1)
	require.NoError(t, sub.RegisterService("info", func(ctx context.Context, _ *channel.Channel) error {
		c, ok := FromContext(ctx)
		if !ok {
			return errors.New("missing route context")
		}
		got <- c
		return nil
	}))

	client, server := pipe(t)
	errCh := dispatchAsync(r, "svc/info", server)
	expectStatus(t, client)
	require.NoError(t, <-errCh)

	c := <-got
	assert.Same(t, r, c.Route)
	assert.Equal(t, "svc/info", c.Path)
	assert.Equal(t, server.Info().ID, c.ChannelID)

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}

func TestRoute_SwitchAndIntroduce(t *testing.T) {
	r := New("root")
	called := make(chan string, 2)
	require.NoError(t, r.RegisterService("echo", func(ctx context.Context, ch *channel.Channel) error {
		c, _ := FromContext(ctx)
		called <- c.Path
		return nil
	}))

	// Switch 不发送状态
	client, server := pipe(t)
	require.NoError(t, r.Switch(context.Background(), "echo", server))
	assert.Equal(t, "echo", <-called)
	r.Wait()
	_, err := channel.Receive[types.Status](client)
	assert.True(t, types.IsTerminal(err))

	_, server2 := pipe(t)
	assert.ErrorIs(t, r.Switch(context.Background(), "missing", server2), types.ErrNotFound)

	// Introduce 先读路径
	client3, server3 := pipe(t)
	errCh := make(chan error, 1)
	go func() { errCh <- r.Introduce(context.Background(), server3) }()
	require.NoError(t, client3.Send("echo"))
	assert.Equal(t, types.StatusFound, expectStatus(t, client3).Code)
	require.NoError(t, <-errCh)
	assert.Equal(t, "echo", <-called)
	r.Wait()
}

func TestRoute_SharedMetadata(t *testing.T) {
	r := New("root")
	counter := NewShared(0)
	require.NoError(t, Register(r, "inc", counter, func(_ context.Context, c *Shared[int], _ *channel.Channel) error {
		c.Update(func(n *int) { *n++ })
		return nil
	}))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		client, server := pipe(t)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh := dispatchAsync(r, "inc", server)
			_, _ = channel.Receive[types.Status](client)
			<-errCh
		}()
	}
	wg.Wait()
	r.Wait()

	assert.Equal(t, n, counter.Get())
	counter.Read(func(v int) { assert.Equal(t, n, v) })
}

func TestRoute_WaitConcurrentWithDispatch(t *testing.T) {
	r := New("root")
	release := make(chan struct{})
	require.NoError(t, r.RegisterService("hold", func(context.Context, *channel.Channel) error {
		<-release
		return nil
	}))
	assert.Equal(t, 0, r.Active())
	r.Wait()

	// 计数为零时 Wait 与 Dispatch 并发
	stop := make(chan struct{})
	waiting := make(chan struct{})
	go func() {
		defer close(waiting)
		for {
			select {
			case <-stop:
				return
			default:
				r.Wait()
			}
		}
	}()

	const n = 10
	for i := 0; i < n; i++ {
		client, server := pipe(t)
		errCh := dispatchAsync(r, "hold", server)
		_, _ = channel.Receive[types.Status](client)
		require.NoError(t, <-errCh)
	}
	assert.Equal(t, n, r.Active())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.WaitContext(ctx), context.DeadlineExceeded)

	close(release)
	r.Wait()
	assert.Equal(t, 0, r.Active())

	close(stop)
	<-waiting
	t.Log("✅ Wait 可与分发并发")
}

func TestRoute_ConcurrentRegisterAndDispatch(t *testing.T) {
	r := New("root")
	require.NoError(t, r.RegisterService("base", func(context.Context, *channel.Channel) error { return nil }))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = r.RegisterService(fmt.Sprintf("svc-%d", i), func(context.Context, *channel.Channel) error { return nil })
		}(i)
		go func() {
			defer wg.Done()
			_, err := r.Lookup("base")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, r.Names(), 21)
	assert.True(t, r.Remove("svc-0"))
	assert.False(t, r.Remove("svc-0"))
	_, ok := r.Get("svc-0")
	assert.False(t, ok)
}

func TestGlobal(t *testing.T) {
	assert.Same(t, Global(), Global())
	assert.Equal(t, "global", Global().Name())

	assert.Same(t, Global(), Provide(Params{}))
	own := New("own")
	assert.Same(t, own, Provide(Params{Route: own}))
}

func TestValue(t *testing.T) {
	sub := New("sub")
	v := RouteValue(sub)
	assert.Equal(t, KindRoute, v.Kind())
	assert.Same(t, sub, v.Route())
	assert.Nil(t, v.Service())

	s := ServiceValue(func(context.Context, *channel.Channel) error { return nil })
	assert.Equal(t, KindService, s.Kind())
	assert.NotNil(t, s.Service())
	assert.Nil(t, s.Route())
}

func mustMetrics(t *testing.T) *metrics.Metrics {
	t.Helper()
	m, err := metrics.New("route_test", nil)
	require.NoError(t, err)
	return m
}
