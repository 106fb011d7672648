package storefront

import (
	"github.com/redis/go-redis/v9"

	"github.com/tair/furniture-storefront/internal/config"
	"github.com/tair/furniture-storefront/internal/identity"
	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/delivery/http"
	"github.com/tair/furniture-storefront/internal/storefront/session"
	"github.com/tair/furniture-storefront/internal/storefront/usecase/command"
	"github.com/tair/furniture-storefront/internal/transport"
	"github.com/tair/furniture-storefront/kafka"
	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/metrics"
)

// cacheNamespace prefixes every query cache key kept in redis
const cacheNamespace = "storefront:query"

// Storefront is the wired storefront session with its API handler
type Storefront struct {
	Session  *session.Session
	Handler  *http.Handler
	Registry *transport.Registry
	Breakers *transport.BreakerSet
	Metrics  *metrics.Metrics
}

// NewStorefront groups the wired components
func NewStorefront(s *session.Session, h *http.Handler, r *transport.Registry, b *transport.BreakerSet, m *metrics.Metrics) *Storefront {
	return &Storefront{Session: s, Handler: h, Registry: r, Breakers: b, Metrics: m}
}

// ProvideQueryStore provides the redis query cache when a client is given, the in-memory one otherwise
func ProvideQueryStore(cfg *config.Config, rdb *redis.Client) query.Store {
	if rdb != nil {
		return query.NewRedisStore(rdb, cacheNamespace, cfg.CacheTTL)
	}
	return query.NewMemoryStore(cfg.CacheTTL)
}

// ProvideQueryClient provides the query cache client
func ProvideQueryClient(store query.Store, m *metrics.Metrics) *query.Client {
	return query.NewClient(store, m)
}

// ProvideBalancer provides round-robin selection over the backend endpoints
func ProvideBalancer(cfg *config.Config) *transport.RoundRobin {
	return transport.NewRoundRobin(cfg.Backend.Addrs)
}

// ProvideBreakers provides the per-endpoint circuit breakers
func ProvideBreakers(cfg *config.Config) *transport.BreakerSet {
	return transport.NewBreakerSet(cfg.Backend.MaxFailures, cfg.Backend.OpenTimeout)
}

// ProvideRegistry provides the actor registry. The cleanup closes every connection.
func ProvideRegistry(cfg *config.Config, dial transport.DialFunc, rr *transport.RoundRobin, breakers *transport.BreakerSet) (*transport.Registry, func()) {
	registry := transport.NewRegistry(dial, rr, breakers, cfg.Backend.Timeout)
	return registry, func() {
		if err := registry.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to close backend connections")
		}
	}
}

// ProvideActors adapts the registry to the session
func ProvideActors(registry *transport.Registry) session.Actors {
	return session.RegistryActors(registry)
}

// ProvideIdentityProvider provides the bearer token identity provider
func ProvideIdentityProvider() identity.Provider {
	return identity.NewTokenProvider()
}

// ProvideEventPublisher provides the kafka publisher, or a no-op one when no brokers are configured
func ProvideEventPublisher(cfg *config.Config) (command.EventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Logger.Info().Msg("No Kafka brokers configured, storefront events disabled")
		return kafka.NopPublisher{}, func() {}, nil
	}

	publisher, err := kafka.NewPublisher(cfg.KafkaBrokers)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Logger.Warn().Err(err).Msg("Failed to close Kafka publisher")
		}
	}, nil
}

// ProvideSession provides the shopper session
func ProvideSession(cfg *config.Config, actors session.Actors, client *query.Client, provider identity.Provider, events command.EventPublisher, m *metrics.Metrics) (*session.Session, func()) {
	s := session.New(session.Options{
		InitialFragment: cfg.InitialFragment,
		LoginRetryDelay: cfg.Backend.LoginRetryDelay,
	}, actors, client, provider, events, m)
	return s, s.Close
}

// ProvideHandler provides the session API handler
func ProvideHandler(s *session.Session) *http.Handler {
	return http.NewHandler(s)
}
