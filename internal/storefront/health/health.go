package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/tair/furniture-storefront/internal/transport"
	"github.com/tair/furniture-storefront/pkg/logger"
)

// Status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// BackendHealth represents the health status of one backend endpoint
type BackendHealth struct {
	Endpoint  string        `json:"endpoint"`
	Status    string        `json:"status"`
	Circuit   string        `json:"circuit"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Report represents the overall readiness of the storefront
type Report struct {
	Service  string                   `json:"service"`
	Status   string                   `json:"status"`
	Backends map[string]BackendHealth `json:"backends"`
	Uptime   time.Duration            `json:"uptime_seconds"`
}

// Checker probes the backend endpoints with the gRPC health protocol
type Checker struct {
	service   string
	clients   map[string]grpc_health_v1.HealthClient
	breakers  *transport.BreakerSet
	timeout   time.Duration
	startTime time.Time
}

// NewChecker creates a checker over conns, keyed by endpoint. breakers may be nil.
func NewChecker(service string, conns map[string]grpc.ClientConnInterface, breakers *transport.BreakerSet, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	clients := make(map[string]grpc_health_v1.HealthClient, len(conns))
	for endpoint, conn := range conns {
		clients[endpoint] = grpc_health_v1.NewHealthClient(conn)
	}
	return &Checker{
		service:   service,
		clients:   clients,
		breakers:  breakers,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// CheckBackend probes a single endpoint
func (h *Checker) CheckBackend(ctx context.Context, endpoint string) BackendHealth {
	start := time.Now()
	result := BackendHealth{
		Endpoint:  endpoint,
		Circuit:   h.circuit(endpoint),
		Timestamp: start,
	}

	client, ok := h.clients[endpoint]
	if !ok {
		result.Status = StatusUnhealthy
		result.Error = "unknown endpoint"
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	resp, err := client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: transport.ServiceName})
	result.Latency = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("Failed to reach backend: %v", err)
		return result
	}

	if resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING {
		result.Status = StatusHealthy
	} else {
		result.Status = StatusUnhealthy
		result.Error = fmt.Sprintf("Unexpected serving status: %s", resp.GetStatus())
	}
	return result
}

// CheckAll probes every endpoint concurrently
func (h *Checker) CheckAll(ctx context.Context) Report {
	backends := make(map[string]BackendHealth, len(h.clients))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for endpoint := range h.clients {
		wg.Add(1)
		go func(e string) {
			defer wg.Done()
			health := h.CheckBackend(ctx, e)

			mu.Lock()
			backends[e] = health
			mu.Unlock()

			if health.Status == StatusHealthy {
				logger.Debug(ctx).
					Str("endpoint", e).
					Dur("latency", health.Latency).
					Msg("Backend health check")
			} else {
				logger.Warn(ctx).
					Str("endpoint", e).
					Str("error", health.Error).
					Msg("Backend health check failed")
			}
		}(endpoint)
	}
	wg.Wait()

	return Report{
		Service:  h.service,
		Status:   overallStatus(backends),
		Backends: backends,
		Uptime:   time.Since(h.startTime),
	}
}

// Live reports process liveness only
func (h *Checker) Live() map[string]any {
	return map[string]any{
		"status":    StatusHealthy,
		"service":   h.service,
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}

func (h *Checker) circuit(endpoint string) string {
	if h.breakers == nil {
		return ""
	}
	return string(h.breakers.For(endpoint).State())
}

func overallStatus(backends map[string]BackendHealth) string {
	healthy := 0
	for _, b := range backends {
		if b.Status == StatusHealthy {
			healthy++
		}
	}

	switch {
	case len(backends) > 0 && healthy == len(backends):
		return StatusHealthy
	case healthy > 0:
		return StatusDegraded
	default:
		return StatusUnhealthy
	}
}
