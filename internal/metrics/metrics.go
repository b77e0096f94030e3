// metrics — Prometheus-метрики шлюза и клиента backend'а.
// Все методы безопасны для nil-получателя: без метрик код работает так же.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "silver"

// Исходы обновления токенов.
const (
	RefreshSuccess  = "success"
	RefreshReused   = "reused" // пару уже обновил другой запрос
	RefreshRejected = "rejected"
	RefreshNetwork  = "network"
	RefreshCanceled = "canceled"
)

type Metrics struct {
	refreshTotal     *prometheus.CounterVec
	invalidations    prometheus.Counter
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	httpTotal        *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New регистрирует коллекторы в reg (nil — prometheus.DefaultRegisterer).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		refreshTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_refresh_total",
			Help:      "Token refresh attempts by outcome.",
		}, []string{"outcome"}),
		invalidations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_invalidations_total",
			Help:      "Sessions terminated after an unrecoverable auth failure.",
		}),
		upstreamTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Outbound requests to the backend API.",
		}, []string{"method", "code"}),
		upstreamDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Duration of outbound requests to the backend API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of gateway HTTP requests.",
		}, []string{"path", "method", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of gateway HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method", "status"}),
	}
}

func (m *Metrics) Refresh(outcome string) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Invalidated() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

// Upstream — status 0 означает транспортную ошибку (code="error").
func (m *Metrics) Upstream(method string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}

	m.upstreamTotal.WithLabelValues(method, code).Inc()
	m.upstreamDuration.WithLabelValues(method).Observe(dur.Seconds())
}

func (m *Metrics) HTTP(path, method string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	s := strconv.Itoa(status)
	m.httpTotal.WithLabelValues(path, method, s).Inc()
	m.httpDuration.WithLabelValues(path, method, s).Observe(dur.Seconds())
}
