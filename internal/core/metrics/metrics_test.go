package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/znx3p0/canary/config"
	"github.com/znx3p0/canary/pkg/types"
)

func TestMetrics_Counters(t *testing.T) {
	m, err := New("canary", nil)
	require.NoError(t, err)

	m.ChannelOpened(types.DirInbound, types.ProviderTCP)
	m.ChannelOpened(types.DirInbound, types.ProviderTCP)
	m.HandshakeFailed("/canary/noise/1.0.0")
	m.Dispatch(OutcomeFound)
	m.Dispatch(OutcomeNotFound)
	m.Dispatch(OutcomeNotFound)
	m.ServiceStarted()
	m.ServiceStarted()
	m.ServiceDone()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.channelsOpened.WithLabelValues("inbound", "tcp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.handshakeFailures.WithLabelValues("/canary/noise/1.0.0")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.dispatch.WithLabelValues(OutcomeNotFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.servicesActive))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChannelOpened(types.DirOutbound, types.ProviderQUIC)
		m.HandshakeFailed("x")
		m.Dispatch(OutcomeFailed)
		m.ServiceStarted()
		m.ServiceDone()
	})
}

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := New("canary", reg)
	require.NoError(t, err)

	// 同名指标复用已注册的收集器
	b, err := New("canary", reg)
	require.NoError(t, err)
	a.Dispatch(OutcomeFound)
	b.Dispatch(OutcomeFound)
	assert.Equal(t, 2.0, testutil.ToFloat64(b.dispatch.WithLabelValues(OutcomeFound)))

	_, err = New("other", reg)
	assert.NoError(t, err)
}

func TestMetrics_RegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "canary",
		Name:      "dispatch_total",
		Help:      "Same name, different type.",
	})))

	_, err := New("canary", reg)
	assert.Error(t, err)
}

func TestProvide(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Enable = false
	m, err := Provide(Params{Config: cfg})
	require.NoError(t, err)
	assert.Nil(t, m)

	cfg.Metrics.Enable = true
	m, err = Provide(Params{Config: cfg, Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
