package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/tair/furniture-storefront/internal/identity"
	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/metrics"
)

// ErrNoEndpoints is returned when no backend address is configured
var ErrNoEndpoints = errors.New("no backend endpoints configured")

// DialFunc opens a connection to endpoint. The returned closer releases it.
type DialFunc func(endpoint string) (grpc.ClientConnInterface, io.Closer, error)

// GRPCDial creates a lazily connecting gRPC client with tracing
func GRPCDial(endpoint string) (grpc.ClientConnInterface, io.Closer, error) {
	return dial(endpoint)
}

// NewGRPCDialer returns a DialFunc whose connections also log every call and record it in m
func NewGRPCDialer(m *metrics.Metrics) DialFunc {
	return func(endpoint string) (grpc.ClientConnInterface, io.Closer, error) {
		return dial(endpoint, grpc.WithChainUnaryInterceptor(
			LoggingInterceptor(endpoint),
			MetricsInterceptor(m),
		))
	}
}

func dial(endpoint string, opts ...grpc.DialOption) (grpc.ClientConnInterface, io.Closer, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create backend client for %s: %w", endpoint, err)
	}
	return conn, conn, nil
}

type handle struct {
	actor  *Actor
	closer io.Closer
}

// Registry keeps one actor per identity key. Actors are built on first use and closed when
// their identity goes away.
type Registry struct {
	dial     DialFunc
	balancer *RoundRobin
	breakers *BreakerSet
	timeout  time.Duration

	mu      sync.Mutex
	handles map[string]*handle
}

// NewRegistry creates an empty registry
func NewRegistry(dial DialFunc, balancer *RoundRobin, breakers *BreakerSet, timeout time.Duration) *Registry {
	return &Registry{
		dial:     dial,
		balancer: balancer,
		breakers: breakers,
		timeout:  timeout,
		handles:  make(map[string]*handle),
	}
}

// Get returns the actor for id, building it if needed. A nil id gets the anonymous actor.
func (r *Registry) Get(id *identity.Identity) (*Actor, error) {
	key := id.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handles[key]; ok {
		return h.actor, nil
	}

	endpoint := r.balancer.Next()
	if endpoint == "" {
		return nil, ErrNoEndpoints
	}

	conn, closer, err := r.dial(endpoint)
	if err != nil {
		return nil, err
	}

	token := ""
	if id != nil {
		token = id.Token
	}
	actor := NewActor(conn, endpoint, token, r.timeout, r.breakers.For(endpoint))
	r.handles[key] = &handle{actor: actor, closer: closer}

	logger.Logger.Debug().
		Str("identity", key).
		Str("endpoint", endpoint).
		Msg("Backend actor created")

	return actor, nil
}

// Lookup returns the actor for id only if it was already built
func (r *Registry) Lookup(id *identity.Identity) (*Actor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[id.Key()]
	if !ok {
		return nil, false
	}
	return h.actor, true
}

// Retain closes and drops every actor except the one of id
func (r *Registry) Retain(id *identity.Identity) {
	keep := id.Key()

	r.mu.Lock()
	var stale []*handle
	for key, h := range r.handles {
		if key != keep {
			stale = append(stale, h)
			delete(r.handles, key)
		}
	}
	r.mu.Unlock()

	for _, h := range stale {
		closeHandle(h)
	}
}

// Invalidate closes and drops the actor of id
func (r *Registry) Invalidate(id *identity.Identity) {
	r.mu.Lock()
	h, ok := r.handles[id.Key()]
	delete(r.handles, id.Key())
	r.mu.Unlock()

	if ok {
		closeHandle(h)
	}
}

// Len returns the number of live actors
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Breakers exposes the circuit breaker states per endpoint
func (r *Registry) Breakers() map[string]CircuitState {
	return r.breakers.States()
}

// Close releases every actor
func (r *Registry) Close() error {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[string]*handle)
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if h.closer != nil {
			if err := h.closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func closeHandle(h *handle) {
	if h.closer == nil {
		return
	}
	if err := h.closer.Close(); err != nil {
		logger.Logger.Warn().
			Err(err).
			Str("endpoint", h.actor.Endpoint()).
			Msg("Failed to close backend actor")
	}
}
