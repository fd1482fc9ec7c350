package metrics

import (
	"net/http"
	"strconv"
	"time"

	"crypto-gate-service/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "crypto_gate"
)

type Registry struct {
	registry *prometheus.Registry
}

func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{registry: registry}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

type Gate struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	rateLimitDenials *prometheus.CounterVec
	upstreamAttempts *prometheus.CounterVec
}

func NewGate(r *Registry) *Gate {
	m := &Gate{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests by endpoint and status code",
		}, []string{"endpoint", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by endpoint and result",
		}, []string{"endpoint", "result"}),
		rateLimitDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_denials_total",
			Help:      "Upstream bound attempts rejected by the request budget",
		}, []string{"scope"}),
		upstreamAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_attempts_total",
			Help:      "Upstream HTTP attempts by upstream and outcome",
		}, []string{"upstream", "outcome"}),
	}
	r.registry.MustRegister(m.requests, m.requestDuration, m.cacheLookups, m.rateLimitDenials, m.upstreamAttempts)
	return m
}

// RegisterBudget exposes the live request budget usage as gauges.
func (m *Gate) RegisterBudget(r *Registry, stats func() domain.RateLimitStats) {
	r.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_limit_minute_usage",
			Help:      "Upstream requests admitted in the current minute window",
		}, func() float64 {
			return float64(stats().Minute.Current)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rate_limit_month_usage",
			Help:      "Upstream requests admitted in the current month",
		}, func() float64 {
			return float64(stats().Month.Current)
		}),
	)
}

func (m *Gate) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Gate) CacheLookup(endpoint string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(endpoint, result).Inc()
}

func (m *Gate) RateLimitDenied(scope domain.LimitScope) {
	m.rateLimitDenials.WithLabelValues(string(scope)).Inc()
}

func (m *Gate) UpstreamAttempt(upstream string, outcome string) {
	m.upstreamAttempts.WithLabelValues(upstream, outcome).Inc()
}

type Monitor struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	clients       prometheus.Gauge
}

func NewMonitor(r *Registry) *Monitor {
	m := &Monitor{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crypto_monitor",
			Name:      "cycles_total",
			Help:      "Polling cycles by result",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crypto_monitor",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full polling cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crypto_monitor",
			Name:      "ws_clients",
			Help:      "Connected websocket clients",
		}),
	}
	r.registry.MustRegister(m.cycles, m.cycleDuration, m.clients)
	return m
}

func (m *Monitor) CycleFinished(result string, elapsed time.Duration) {
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
}

func (m *Monitor) ClientConnected() {
	m.clients.Inc()
}

func (m *Monitor) ClientDisconnected() {
	m.clients.Dec()
}
