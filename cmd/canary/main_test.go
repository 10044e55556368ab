package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/znx3p0/canary"
)

func TestDemoServices(t *testing.T) {
	mem := canary.NewMemoryNetwork()
	r := canary.NewRoute("root")
	require.NoError(t, registerDemo(r))
	assert.Equal(t, []string{"Math", "echo"}, r.Names())

	server, err := canary.New(context.Background(), canary.WithRoute(r), canary.WithMemoryNetwork(mem))
	require.NoError(t, err)
	defer server.Close()
	client, err := canary.New(context.Background(), canary.WithMemoryNetwork(mem), canary.WithRoute(canary.NewRoute("client")))
	require.NoError(t, err)
	defer client.Close()

	bound, err := server.Bind(context.Background(), canary.MustParseAddress("imem@demo"))
	require.NoError(t, err)

	ch, err := client.Connect(context.Background(), bound.Join("echo"), canary.WithConnectFormat(canary.FormatJSON))
	require.NoError(t, err)
	for _, msg := range []string{"a", "bc"} {
		require.NoError(t, ch.Send(msg))
		got, err := canary.Receive[string](ch)
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
	_ = ch.Close()

	ch, err = client.Connect(context.Background(), bound.Join("Math", "Add"))
	require.NoError(t, err)
	defer ch.Close()
	require.NoError(t, ch.Send([]int{2, 3}))
	sum, err := canary.Receive[int](ch)
	require.NoError(t, err)
	assert.Equal(t, 5, sum)
}

func TestParseInts(t *testing.T) {
	got, err := parseInts("2, 3,-4")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, -4}, got)

	_, err = parseInts("2,x")
	assert.Error(t, err)
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(nil, &out))
	assert.Contains(t, out.String(), "serve")

	out.Reset()
	assert.NoError(t, run([]string{"help"}, &out))
	assert.Error(t, run([]string{"bogus"}, &out))
	assert.Error(t, run([]string{"call"}, &out))
}
