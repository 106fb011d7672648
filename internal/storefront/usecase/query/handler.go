package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// base carries what every query handler needs
type base struct {
	caller domain.Caller
	client *query.Client
}

// fetch runs a query once the actor exists
func fetch[T any](ctx context.Context, b base, key query.Key, fn func(context.Context, domain.Backend) (T, error)) query.Result[T] {
	backend, ok := b.caller.Backend()
	return query.Fetch(ctx, b.client, key, ok, func(ctx context.Context) (T, error) {
		return fn(ctx, backend)
	})
}

// fetchScoped runs a query once the actor exists and an identity is signed in
func fetchScoped[T any](ctx context.Context, b base, key query.Key, fn func(context.Context, domain.Backend) (T, error)) query.Result[T] {
	backend, ok := b.caller.Backend()
	_, authenticated := b.caller.Principal()
	return query.Fetch(ctx, b.client, key, ok && authenticated, func(ctx context.Context) (T, error) {
		return fn(ctx, backend)
	})
}
