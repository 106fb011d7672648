package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront session collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheLookups     *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	mutationTotal    *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	routeChanges     *prometheus.CounterVec
	requestCounter   *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	cartItems        prometheus.Gauge
	rpcTotal         *prometheus.CounterVec
	rpcDuration      *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_query_cache_lookups_total",
				Help: "Query cache lookups by query name and result (hit, miss)",
			},
			[]string{"query", "result"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_query_duration_seconds",
				Help:    "Remote query latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query", "status"},
		),
		mutationTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_mutations_total",
				Help: "Remote mutations by kind and status",
			},
			[]string{"mutation", "status"},
		),
		mutationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_mutation_duration_seconds",
				Help:    "Remote mutation latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mutation"},
		),
		routeChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_route_changes_total",
				Help: "Route changes by route kind",
			},
			[]string{"route"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_session_requests_total",
				Help: "Session API requests",
			},
			[]string{"method", "path", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_session_request_duration_seconds",
				Help:    "Session API latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		cartItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "storefront_cart_items",
				Help: "Items currently in the session cart",
			},
		),
		rpcTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_backend_rpc_total",
				Help: "Backend gRPC calls by method and status code",
			},
			[]string{"method", "status_code"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_backend_rpc_duration_seconds",
				Help:    "Backend gRPC call latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.cacheLookups,
			m.queryDuration,
			m.mutationTotal,
			m.mutationDuration,
			m.routeChanges,
			m.requestCounter,
			m.requestLatency,
			m.cartItems,
			m.rpcTotal,
			m.rpcDuration,
		)
	}

	return m
}

// CacheHit records a cache hit for query
func (m *Metrics) CacheHit(query string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(query, "hit").Inc()
}

// CacheMiss records a cache miss for query
func (m *Metrics) CacheMiss(query string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(query, "miss").Inc()
}

// ObserveQuery records a remote query round trip
func (m *Metrics) ObserveQuery(query string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(query, outcome(err)).Observe(d.Seconds())
}

// ObserveMutation records a remote mutation round trip
func (m *Metrics) ObserveMutation(mutation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.mutationTotal.WithLabelValues(mutation, outcome(err)).Inc()
	m.mutationDuration.WithLabelValues(mutation).Observe(d.Seconds())
}

// RouteChanged counts a published route
func (m *Metrics) RouteChanged(kind string) {
	if m == nil {
		return
	}
	m.routeChanges.WithLabelValues(kind).Inc()
}

// ObserveRequest records a session API request
func (m *Metrics) ObserveRequest(method, path, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestCounter.WithLabelValues(method, path, status).Inc()
	m.requestLatency.WithLabelValues(method, path).Observe(d.Seconds())
}

// SetCartItems publishes the current cart item count
func (m *Metrics) SetCartItems(n int) {
	if m == nil {
		return
	}
	m.cartItems.Set(float64(n))
}

// ObserveRPC records a backend gRPC call
func (m *Metrics) ObserveRPC(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcTotal.WithLabelValues(method, code).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(d.Seconds())
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
