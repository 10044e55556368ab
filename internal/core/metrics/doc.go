// Package metrics 提供 canary 的 Prometheus 指标
//
// 指标：
//
//	<ns>_channels_opened_total{direction,provider}
//	<ns>_handshake_failures_total{protocol}
//	<ns>_dispatch_total{outcome}
//	<ns>_services_active
//
// 所有方法对 nil 接收者安全，禁用指标时组件直接持有 nil。
package metrics
