package command

import (
	"context"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
	"github.com/tair/furniture-storefront/kafka"
)

// EventPublisher emits storefront events
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event kafka.OrderPlacedEvent) error
	PublishProductViewed(ctx context.Context, event kafka.ProductViewedEvent) error
}

// base carries what every command handler needs
type base struct {
	caller domain.Caller
	client *query.Client
}

// mutate runs fn against the current actor and applies the invalidation rules of kind.
// The call is detached from ctx cancellation so it completes even if the caller goes away.
func (b base) mutate(ctx context.Context, kind query.MutationKind, subject string, fn func(context.Context, domain.Backend) error) error {
	backend, ok := b.caller.Backend()
	if !ok {
		return domain.ErrNotReady
	}
	return b.client.Mutate(context.WithoutCancel(ctx), kind, subject, func(ctx context.Context) error {
		return fn(ctx, backend)
	})
}

// requirePrincipal returns the signed-in principal or ErrNotAuthenticated
func (b base) requirePrincipal() (string, error) {
	principal, ok := b.caller.Principal()
	if !ok {
		return "", domain.ErrNotAuthenticated
	}
	return principal, nil
}
