package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts command outcomes by command name and HTTP status.
type Metrics struct {
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "razord",
			Name:      "commands_total",
			Help:      "Commands handled, by command and response status.",
		}, []string{"command", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "razord",
			Name:      "command_duration_seconds",
			Help:      "Command handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
	reg.MustRegister(m.commands, m.duration)
	return m
}

func (m *Metrics) observe(command string, status int, started time.Time) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(command).Observe(time.Since(started).Seconds())
}

// RegisterMetrics registers Prometheus handler in provided mux
func RegisterMetrics(mux *http.ServeMux, g prometheus.Gatherer) {
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
