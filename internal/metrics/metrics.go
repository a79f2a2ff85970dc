package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	TCPAccepted    prometheus.Counter
	BytesReceived  prometheus.Counter
	BytesSent      prometheus.Counter
	FrameTotal     *prometheus.CounterVec // labels: direction, result=ok|error
	RegisterTotal  *prometheus.CounterVec // labels: result
	DialogTotal    *prometheus.CounterVec // labels: verb, result=ok|error
	UpgradePackets prometheus.Counter
	OnlineGauge    prometheus.Gauge
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		TCPAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jt808_tcp_accept_total",
			Help: "Total accepted terminal TCP connections.",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jt808_bytes_received_total",
			Help: "Total bytes received from terminals.",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jt808_bytes_sent_total",
			Help: "Total bytes sent to terminals.",
		}),
		FrameTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jt808_frame_total",
			Help: "Frames processed by direction and result.",
		}, []string{"direction", "result"}),
		RegisterTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jt808_register_total",
			Help: "Terminal register attempts by result.",
		}, []string{"result"}),
		DialogTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jt808_dialog_total",
			Help: "Operator command dialogs by verb and result.",
		}, []string{"verb", "result"}),
		UpgradePackets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jt808_upgrade_packets_total",
			Help: "Firmware upgrade packages sent.",
		}),
		OnlineGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jt808_online_terminals",
			Help: "Current number of authenticated terminals.",
		}),
	}
	reg.MustRegister(m.TCPAccepted, m.BytesReceived, m.BytesSent, m.FrameTotal,
		m.RegisterTotal, m.DialogTotal, m.UpgradePackets, m.OnlineGauge)
	return m
}
