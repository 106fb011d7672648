package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// OrdersHandler serves order reads
type OrdersHandler struct {
	base
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(caller domain.Caller, client *query.Client) *OrdersHandler {
	return &OrdersHandler{base{caller: caller, client: client}}
}

// MyOrders returns the orders of the signed-in caller
func (h *OrdersHandler) MyOrders(ctx context.Context) query.Result[[]domain.Order] {
	return fetchScoped(ctx, h.base, query.MyOrders, func(ctx context.Context, b domain.Backend) ([]domain.Order, error) {
		return b.GetMyOrders(ctx)
	})
}

// AllOrders returns every order (admin)
func (h *OrdersHandler) AllOrders(ctx context.Context) query.Result[[]domain.Order] {
	return fetch(ctx, h.base, query.AllOrders, func(ctx context.Context, b domain.Backend) ([]domain.Order, error) {
		return b.GetAllOrders(ctx)
	})
}

// ActiveOrders returns orders that are still pending or processing
func (h *OrdersHandler) ActiveOrders(ctx context.Context) query.Result[[]domain.Order] {
	return fetch(ctx, h.base, query.ActiveOrders, func(ctx context.Context, b domain.Backend) ([]domain.Order, error) {
		return b.GetActiveOrders(ctx)
	})
}

// CompletedOrders returns delivered and cancelled orders
func (h *OrdersHandler) CompletedOrders(ctx context.Context) query.Result[[]domain.Order] {
	return fetch(ctx, h.base, query.CompletedOrders, func(ctx context.Context, b domain.Backend) ([]domain.Order, error) {
		return b.GetCompletedOrders(ctx)
	})
}

// Order returns one order; Data is nil when it does not exist
func (h *OrdersHandler) Order(ctx context.Context, id string) query.Result[*domain.Order] {
	return fetch(ctx, h.base, query.Order.With(id), func(ctx context.Context, b domain.Backend) (*domain.Order, error) {
		return b.GetOrder(ctx, id)
	})
}
