package domain

import (
	"context"

	"github.com/tair/furniture-storefront/internal/media"
)

// Backend is the remote storefront API. Implementations are bound to one caller identity;
// "caller" operations act on behalf of that identity.
type Backend interface {
	// Catalog
	GetActiveProducts(ctx context.Context) ([]Product, error)
	GetAllProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetFeaturedProducts(ctx context.Context) ([]Product, error)
	SetFeaturedProducts(ctx context.Context, ids []string) error
	GetProductsByCategory(ctx context.Context, category string) ([]Product, error)
	GetAllCategories(ctx context.Context) ([]string, error)
	AddCategory(ctx context.Context, name string) error
	DeleteCategory(ctx context.Context, name string) error
	AddProduct(ctx context.Context, p ProductInput) error
	UpdateProduct(ctx context.Context, p ProductInput) error
	UpdateProductMedia(ctx context.Context, productID string, images, videos []*media.Blob) error
	IncrementProductViews(ctx context.Context, productID string) error
	GetProductStats(ctx context.Context, id string) (*ProductStats, error)
	GetAllProductStats(ctx context.Context) ([]ProductStats, error)

	// Orders
	CreateOrder(ctx context.Context, o NewOrder) error
	GetMyOrders(ctx context.Context) ([]Order, error)
	GetAllOrders(ctx context.Context) ([]Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error
	GetActiveOrders(ctx context.Context) ([]Order, error)
	GetCompletedOrders(ctx context.Context) ([]Order, error)

	// Identity and profile
	GetCallerUserProfile(ctx context.Context) (*UserProfile, error)
	SaveCallerUserProfile(ctx context.Context, profile UserProfile) error
	GetUserProfile(ctx context.Context, principal string) (*UserProfile, error)
	IsCallerAdmin(ctx context.Context) (bool, error)
	GetCallerUserRole(ctx context.Context) (UserRole, error)
	AssignCallerUserRole(ctx context.Context, principal string, role UserRole) error

	// Store and meta
	GetStoreInfo(ctx context.Context) (*StoreInfo, error)
	GetSystemStats(ctx context.Context) (*SystemStats, error)
	GetWishlist(ctx context.Context) ([]string, error)
	AddToWishlist(ctx context.Context, productID string) error
	RemoveFromWishlist(ctx context.Context, productID string) error
}
