package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kylerisse/hostalive/pkg/check"
	"github.com/kylerisse/hostalive/pkg/host"
	"github.com/kylerisse/hostalive/pkg/sink"
)

// metrics holds the Prometheus collectors exported on /metrics.
type metrics struct {
	registry      *prometheus.Registry
	hostAlive     *prometheus.GaugeVec
	hostLatency   *prometheus.GaugeVec
	writes        *prometheus.CounterVec
	pointsWritten prometheus.Counter
}

func newMetrics(reg *prometheus.Registry, hosts []host.Host) *metrics {
	m := &metrics{
		registry: reg,
		hostAlive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hostalive",
			Name:      "host_alive",
			Help:      "Whether the host answered the last ping (1=up, 0=down).",
		}, []string{"host"}),
		hostLatency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hostalive",
			Name:      "host_latency_seconds",
			Help:      "Round-trip time of the last successful ping.",
		}, []string{"host"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostalive",
			Name:      "writes_total",
			Help:      "Batched writes to the database by outcome.",
		}, []string{"result"}),
		pointsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hostalive",
			Name:      "points_written_total",
			Help:      "Points acknowledged by the database.",
		}),
	}
	reg.MustRegister(m.hostAlive, m.hostLatency, m.writes, m.pointsWritten)

	for _, h := range hosts {
		m.hostAlive.WithLabelValues(h.Name).Set(0)
	}
	m.writes.WithLabelValues("success")
	m.writes.WithLabelValues("failure")

	return m
}

func (m *metrics) observeProbe(h host.Host, result check.Result) {
	m.hostAlive.WithLabelValues(h.Name).Set(float64(result.Value()))
	if us, ok := result.Metrics["latency_us"]; ok && result.Success {
		m.hostLatency.WithLabelValues(h.Name).Set(us / 1e6)
	}
}

func (m *metrics) observeWrite(result sink.WriteResult) {
	if !result.OK() {
		m.writes.WithLabelValues("failure").Inc()
		return
	}
	m.writes.WithLabelValues("success").Inc()
	m.pointsWritten.Add(float64(result.Written))
}
