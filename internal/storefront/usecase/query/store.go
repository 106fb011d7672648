package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// StoreHandler serves shop information and back-office totals
type StoreHandler struct {
	base
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(caller domain.Caller, client *query.Client) *StoreHandler {
	return &StoreHandler{base{caller: caller, client: client}}
}

// Info returns the physical shop details
func (h *StoreHandler) Info(ctx context.Context) query.Result[*domain.StoreInfo] {
	return fetch(ctx, h.base, query.StoreInfo, func(ctx context.Context, b domain.Backend) (*domain.StoreInfo, error) {
		return b.GetStoreInfo(ctx)
	})
}

// SystemStats returns back-office totals
func (h *StoreHandler) SystemStats(ctx context.Context) query.Result[*domain.SystemStats] {
	return fetch(ctx, h.base, query.SystemStats, func(ctx context.Context, b domain.Backend) (*domain.SystemStats, error) {
		return b.GetSystemStats(ctx)
	})
}
