package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/znx3p0/canary/pkg/types"
)

// 分发结果标签
const (
	OutcomeFound     = "found"
	OutcomeNotFound  = "not_found"
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomePanicked  = "panicked"
)

// Metrics 节点指标集合
type Metrics struct {
	channelsOpened    *prometheus.CounterVec
	handshakeFailures *prometheus.CounterVec
	dispatch          *prometheus.CounterVec
	servicesActive    prometheus.Gauge
}

// New 创建指标并注册到 reg
//
// reg 为 nil 时不注册，适用于测试。
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		channelsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "channels_opened_total",
				Help:      "Channels opened, by direction and provider.",
			},
			[]string{"direction", "provider"},
		),
		handshakeFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handshake_failures_total",
				Help:      "Failed security handshakes, by protocol.",
			},
			[]string{"protocol"},
		),
		dispatch: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Dispatch outcomes.",
			},
			[]string{"outcome"},
		),
		servicesActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "services_active",
				Help:      "Service invocations currently running.",
			},
		),
	}

	if reg != nil {
		var err, e error
		m.channelsOpened, e = register(reg, m.channelsOpened)
		err = multierr.Append(err, e)
		m.handshakeFailures, e = register(reg, m.handshakeFailures)
		err = multierr.Append(err, e)
		m.dispatch, e = register(reg, m.dispatch)
		err = multierr.Append(err, e)
		m.servicesActive, e = register(reg, m.servicesActive)
		err = multierr.Append(err, e)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// register 注册收集器，同名收集器已存在时复用它
//
// 同一进程内的多个节点因此共享同一组指标。
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// ChannelOpened 记录通道建立
func (m *Metrics) ChannelOpened(dir types.Direction, provider types.ProviderKind) {
	if m == nil {
		return
	}
	m.channelsOpened.WithLabelValues(dir.String(), string(provider)).Inc()
}

// HandshakeFailed 记录握手失败
func (m *Metrics) HandshakeFailed(protocol string) {
	if m == nil {
		return
	}
	m.handshakeFailures.WithLabelValues(protocol).Inc()
}

// Dispatch 记录分发结果
func (m *Metrics) Dispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatch.WithLabelValues(outcome).Inc()
}

// ServiceStarted 服务开始执行
func (m *Metrics) ServiceStarted() {
	if m == nil {
		return
	}
	m.servicesActive.Inc()
}

// ServiceDone 服务执行结束
func (m *Metrics) ServiceDone() {
	if m == nil {
		return
	}
	m.servicesActive.Dec()
}
