//go:build wireinject
// +build wireinject

package storefront

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	"github.com/tair/furniture-storefront/internal/config"
	"github.com/tair/furniture-storefront/internal/transport"
	"github.com/tair/furniture-storefront/pkg/metrics"
)

// Wire sets
var QuerySet = wire.NewSet(
	ProvideQueryStore,
	ProvideQueryClient,
)

var TransportSet = wire.NewSet(
	ProvideBalancer,
	ProvideBreakers,
	ProvideRegistry,
	ProvideActors,
)

var SessionSet = wire.NewSet(
	ProvideIdentityProvider,
	ProvideEventPublisher,
	ProvideSession,
	ProvideHandler,
)

var AllSet = wire.NewSet(
	QuerySet,
	TransportSet,
	SessionSet,
	NewStorefront,
)

// InitializeStorefront wires the storefront session with all dependencies
func InitializeStorefront(cfg *config.Config, rdb *redis.Client, m *metrics.Metrics, dial transport.DialFunc) (*Storefront, func(), error) {
	wire.Build(AllSet)
	return nil, nil, nil
}
