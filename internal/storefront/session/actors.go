package session

import (
	"github.com/tair/furniture-storefront/internal/identity"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/internal/transport"
)

// Actors hands out the backend bound to an identity
type Actors interface {
	// Get returns the actor of id, building it on first use
	Get(id *identity.Identity) (domain.Backend, error)
	// Lookup returns the actor of id only if it is already built
	Lookup(id *identity.Identity) (domain.Backend, bool)
	// Retain releases every actor except the one of id
	Retain(id *identity.Identity)
}

type registryActors struct {
	registry *transport.Registry
}

// RegistryActors serves actors from a transport registry
func RegistryActors(registry *transport.Registry) Actors {
	return registryActors{registry: registry}
}

func (r registryActors) Get(id *identity.Identity) (domain.Backend, error) {
	actor, err := r.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return actor, nil
}

func (r registryActors) Lookup(id *identity.Identity) (domain.Backend, bool) {
	actor, ok := r.registry.Lookup(id)
	if !ok {
		return nil, false
	}
	return actor, true
}

func (r registryActors) Retain(id *identity.Identity) {
	r.registry.Retain(id)
}
