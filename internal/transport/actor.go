package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/tair/furniture-storefront/internal/media"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// ServiceName is the fully qualified gRPC service of the storefront backend
const ServiceName = "storefront.v1.Storefront"

// DefaultTimeout bounds one backend call when no timeout is configured
const DefaultTimeout = 10 * time.Second

// Actor is a backend client bound to one caller identity
type Actor struct {
	conn     grpc.ClientConnInterface
	endpoint string
	token    string
	timeout  time.Duration
	breaker  *Breaker
}

var _ domain.Backend = (*Actor)(nil)

// NewActor binds conn to the caller holding token. An empty token calls anonymously.
func NewActor(conn grpc.ClientConnInterface, endpoint, token string, timeout time.Duration, breaker *Breaker) *Actor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Actor{
		conn:     conn,
		endpoint: endpoint,
		token:    token,
		timeout:  timeout,
		breaker:  breaker,
	}
}

// Endpoint returns the backend address the actor talks to
func (a *Actor) Endpoint() string {
	return a.endpoint
}

func (a *Actor) invoke(ctx context.Context, method string, req, resp any) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if a.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+a.token)
	}

	call := func() error {
		return a.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, grpc.CallContentSubtype(codecName))
	}

	var err error
	if a.breaker != nil {
		err = a.breaker.Call(call)
	} else {
		err = call()
	}
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			return fmt.Errorf("%s: %w: %w", method, ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", method, mapError(err))
	}
	return nil
}

// Catalog

func (a *Actor) GetActiveProducts(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := a.invoke(ctx, "GetActiveProducts", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (a *Actor) GetAllProducts(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := a.invoke(ctx, "GetAllProducts", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct returns nil without error when the product does not exist
func (a *Actor) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var resp productResponse
	if err := a.invoke(ctx, "GetProduct", &idRequest{ID: id}, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Product, nil
}

func (a *Actor) GetFeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	var resp productsResponse
	if err := a.invoke(ctx, "GetFeaturedProducts", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (a *Actor) SetFeaturedProducts(ctx context.Context, ids []string) error {
	return a.invoke(ctx, "SetFeaturedProducts", &featuredRequest{ProductIDs: ids}, &empty{})
}

func (a *Actor) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var resp productsResponse
	if err := a.invoke(ctx, "GetProductsByCategory", &categoryRequest{Category: category}, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (a *Actor) GetAllCategories(ctx context.Context) ([]string, error) {
	var resp categoriesResponse
	if err := a.invoke(ctx, "GetAllCategories", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (a *Actor) AddCategory(ctx context.Context, name string) error {
	return a.invoke(ctx, "AddCategory", &nameRequest{Name: name}, &empty{})
}

func (a *Actor) DeleteCategory(ctx context.Context, name string) error {
	return a.invoke(ctx, "DeleteCategory", &nameRequest{Name: name}, &empty{})
}

func (a *Actor) AddProduct(ctx context.Context, p domain.ProductInput) error {
	return a.invoke(ctx, "AddProduct", &p, &empty{})
}

func (a *Actor) UpdateProduct(ctx context.Context, p domain.ProductInput) error {
	return a.invoke(ctx, "UpdateProduct", &p, &empty{})
}

// UpdateProductMedia uploads pending blobs inline and reports 0 and 100 percent progress
// around the call on each of them.
func (a *Actor) UpdateProductMedia(ctx context.Context, productID string, images, videos []*media.Blob) error {
	all := make([]*media.Blob, 0, len(images)+len(videos))
	all = append(all, images...)
	all = append(all, videos...)
	for _, b := range all {
		if b != nil && b.Pending() {
			b.ReportProgress(0)
		}
	}

	req := &productMediaRequest{ProductID: productID, Images: images, Videos: videos}
	if err := a.invoke(ctx, "UpdateProductMedia", req, &empty{}); err != nil {
		return err
	}

	for _, b := range all {
		if b != nil && b.Pending() {
			b.ReportProgress(100)
		}
	}
	return nil
}

func (a *Actor) IncrementProductViews(ctx context.Context, productID string) error {
	return a.invoke(ctx, "IncrementProductViews", &productIDRequest{ProductID: productID}, &empty{})
}

func (a *Actor) GetProductStats(ctx context.Context, id string) (*domain.ProductStats, error) {
	var resp statsResponse
	if err := a.invoke(ctx, "GetProductStats", &idRequest{ID: id}, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Stats, nil
}

func (a *Actor) GetAllProductStats(ctx context.Context) ([]domain.ProductStats, error) {
	var resp allStatsResponse
	if err := a.invoke(ctx, "GetAllProductStats", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// Orders

func (a *Actor) CreateOrder(ctx context.Context, o domain.NewOrder) error {
	return a.invoke(ctx, "CreateOrder", &o, &empty{})
}

func (a *Actor) GetMyOrders(ctx context.Context) ([]domain.Order, error) {
	return a.orders(ctx, "GetMyOrders")
}

func (a *Actor) GetAllOrders(ctx context.Context) ([]domain.Order, error) {
	return a.orders(ctx, "GetAllOrders")
}

func (a *Actor) GetActiveOrders(ctx context.Context) ([]domain.Order, error) {
	return a.orders(ctx, "GetActiveOrders")
}

func (a *Actor) GetCompletedOrders(ctx context.Context) ([]domain.Order, error) {
	return a.orders(ctx, "GetCompletedOrders")
}

func (a *Actor) orders(ctx context.Context, method string) ([]domain.Order, error) {
	var resp ordersResponse
	if err := a.invoke(ctx, method, &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (a *Actor) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var resp orderResponse
	if err := a.invoke(ctx, "GetOrder", &idRequest{ID: id}, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Order, nil
}

func (a *Actor) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return a.invoke(ctx, "UpdateOrderStatus", &orderStatusRequest{OrderID: orderID, Status: status}, &empty{})
}

// Identity and profile

func (a *Actor) GetCallerUserProfile(ctx context.Context) (*domain.UserProfile, error) {
	var resp profileResponse
	if err := a.invoke(ctx, "GetCallerUserProfile", &empty{}, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Profile, nil
}

func (a *Actor) SaveCallerUserProfile(ctx context.Context, profile domain.UserProfile) error {
	return a.invoke(ctx, "SaveCallerUserProfile", &profile, &empty{})
}

func (a *Actor) GetUserProfile(ctx context.Context, principal string) (*domain.UserProfile, error) {
	var resp profileResponse
	if err := a.invoke(ctx, "GetUserProfile", &principalRequest{Principal: principal}, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Profile, nil
}

func (a *Actor) IsCallerAdmin(ctx context.Context) (bool, error) {
	var resp adminResponse
	if err := a.invoke(ctx, "IsCallerAdmin", &empty{}, &resp); err != nil {
		return false, err
	}
	return resp.IsAdmin, nil
}

func (a *Actor) GetCallerUserRole(ctx context.Context) (domain.UserRole, error) {
	var resp roleResponse
	if err := a.invoke(ctx, "GetCallerUserRole", &empty{}, &resp); err != nil {
		return "", err
	}
	return resp.Role, nil
}

func (a *Actor) AssignCallerUserRole(ctx context.Context, principal string, role domain.UserRole) error {
	return a.invoke(ctx, "AssignCallerUserRole", &assignRoleRequest{Principal: principal, Role: role}, &empty{})
}

// Store and meta

func (a *Actor) GetStoreInfo(ctx context.Context) (*domain.StoreInfo, error) {
	var resp storeInfoResponse
	if err := a.invoke(ctx, "GetStoreInfo", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Store, nil
}

func (a *Actor) GetSystemStats(ctx context.Context) (*domain.SystemStats, error) {
	var resp systemStatsResponse
	if err := a.invoke(ctx, "GetSystemStats", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

func (a *Actor) GetWishlist(ctx context.Context) ([]string, error) {
	var resp wishlistResponse
	if err := a.invoke(ctx, "GetWishlist", &empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.ProductIDs, nil
}

func (a *Actor) AddToWishlist(ctx context.Context, productID string) error {
	return a.invoke(ctx, "AddToWishlist", &productIDRequest{ProductID: productID}, &empty{})
}

func (a *Actor) RemoveFromWishlist(ctx context.Context, productID string) error {
	return a.invoke(ctx, "RemoveFromWishlist", &productIDRequest{ProductID: productID}, &empty{})
}
