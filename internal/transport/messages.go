package transport

import (
	"github.com/tair/furniture-storefront/internal/media"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// Wire messages of the storefront.v1.Storefront service

type empty struct{}

type idRequest struct {
	ID string `json:"id"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type categoryRequest struct {
	Category string `json:"category"`
}

type principalRequest struct {
	Principal string `json:"principal"`
}

type productIDRequest struct {
	ProductID string `json:"productId"`
}

type featuredRequest struct {
	ProductIDs []string `json:"productIds"`
}

type productMediaRequest struct {
	ProductID string        `json:"productId"`
	Images    []*media.Blob `json:"images"`
	Videos    []*media.Blob `json:"videos"`
}

type orderStatusRequest struct {
	OrderID string             `json:"orderId"`
	Status  domain.OrderStatus `json:"status"`
}

type assignRoleRequest struct {
	Principal string          `json:"principal"`
	Role      domain.UserRole `json:"role"`
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

// productResponse leaves Product nil when the backend has no such product
type productResponse struct {
	Product *domain.Product `json:"product"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type statsResponse struct {
	Stats *domain.ProductStats `json:"stats"`
}

type allStatsResponse struct {
	Stats []domain.ProductStats `json:"stats"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type orderResponse struct {
	Order *domain.Order `json:"order"`
}

type profileResponse struct {
	Profile *domain.UserProfile `json:"profile"`
}

type adminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}

type roleResponse struct {
	Role domain.UserRole `json:"role"`
}

type storeInfoResponse struct {
	Store *domain.StoreInfo `json:"store"`
}

type systemStatsResponse struct {
	Stats *domain.SystemStats `json:"stats"`
}

type wishlistResponse struct {
	ProductIDs []string `json:"productIds"`
}
