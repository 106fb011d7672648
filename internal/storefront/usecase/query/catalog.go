package query

import (
	"context"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// ProductsQuery lists products. An empty Category keeps every product.
type ProductsQuery struct {
	Category string
	// IncludeInactive lists the full admin catalog
	IncludeInactive bool
}

// CatalogHandler serves product and category reads
type CatalogHandler struct {
	base
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(caller domain.Caller, client *query.Client) *CatalogHandler {
	return &CatalogHandler{base{caller: caller, client: client}}
}

// Products returns the active catalog, or the whole catalog for admins, filtered by category
func (h *CatalogHandler) Products(ctx context.Context, q ProductsQuery) query.Result[[]domain.Product] {
	var res query.Result[[]domain.Product]
	if q.IncludeInactive {
		res = h.AllProducts(ctx)
	} else {
		res = h.ActiveProducts(ctx)
	}
	if res.Ready() {
		res.Data = domain.FilterByCategory(res.Data, q.Category)
	}
	return res
}

// ActiveProducts returns the products shown in the storefront
func (h *CatalogHandler) ActiveProducts(ctx context.Context) query.Result[[]domain.Product] {
	return fetch(ctx, h.base, query.ActiveProducts, func(ctx context.Context, b domain.Backend) ([]domain.Product, error) {
		return b.GetActiveProducts(ctx)
	})
}

// AllProducts returns every product, inactive ones included
func (h *CatalogHandler) AllProducts(ctx context.Context) query.Result[[]domain.Product] {
	return fetch(ctx, h.base, query.AllProducts, func(ctx context.Context, b domain.Backend) ([]domain.Product, error) {
		return b.GetAllProducts(ctx)
	})
}

// Product returns one product; Data is nil when it does not exist
func (h *CatalogHandler) Product(ctx context.Context, id string) query.Result[*domain.Product] {
	return fetch(ctx, h.base, query.Product.With(id), func(ctx context.Context, b domain.Backend) (*domain.Product, error) {
		return b.GetProduct(ctx, id)
	})
}

// FeaturedProducts returns the products highlighted on the home page
func (h *CatalogHandler) FeaturedProducts(ctx context.Context) query.Result[[]domain.Product] {
	return fetch(ctx, h.base, query.FeaturedProducts, func(ctx context.Context, b domain.Backend) ([]domain.Product, error) {
		return b.GetFeaturedProducts(ctx)
	})
}

// ProductsByCategory asks the backend for one category
func (h *CatalogHandler) ProductsByCategory(ctx context.Context, category string) query.Result[[]domain.Product] {
	key := query.ProductsByCategory.With(domain.NormalizeCategory(category))
	return fetch(ctx, h.base, key, func(ctx context.Context, b domain.Backend) ([]domain.Product, error) {
		return b.GetProductsByCategory(ctx, category)
	})
}

// Categories returns every category name
func (h *CatalogHandler) Categories(ctx context.Context) query.Result[[]string] {
	return fetch(ctx, h.base, query.Categories, func(ctx context.Context, b domain.Backend) ([]string, error) {
		return b.GetAllCategories(ctx)
	})
}

// ProductStats returns engagement counters of one product
func (h *CatalogHandler) ProductStats(ctx context.Context, id string) query.Result[*domain.ProductStats] {
	return fetch(ctx, h.base, query.ProductStats.With(id), func(ctx context.Context, b domain.Backend) (*domain.ProductStats, error) {
		return b.GetProductStats(ctx, id)
	})
}

// AllProductStats returns engagement counters of every product
func (h *CatalogHandler) AllProductStats(ctx context.Context) query.Result[[]domain.ProductStats] {
	return fetch(ctx, h.base, query.AllProductStats, func(ctx context.Context, b domain.Backend) ([]domain.ProductStats, error) {
		return b.GetAllProductStats(ctx)
	})
}
