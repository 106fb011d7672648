// Package backendtest provides an in-memory storefront backend for tests.
package backendtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tair/furniture-storefront/internal/media"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

// Fake is an in-memory domain.Backend. Calls counts invocations per method name and Fail
// makes a method return the given error.
type Fake struct {
	mu sync.Mutex

	Products   map[string]domain.Product
	Categories []string
	Featured   []string
	Orders     []domain.Order
	Profiles   map[string]domain.UserProfile
	Admins     map[string]bool
	Wishlist   []string
	Views      map[string]int64
	Store      domain.StoreInfo

	// Principal is the caller the fake acts for
	Principal string

	Calls map[string]int
	Fail  map[string]error
}

var _ domain.Backend = (*Fake)(nil)

// New creates an empty fake acting for principal
func New(principal string) *Fake {
	return &Fake{
		Products:  make(map[string]domain.Product),
		Profiles:  make(map[string]domain.UserProfile),
		Admins:    make(map[string]bool),
		Views:     make(map[string]int64),
		Principal: principal,
		Calls:     make(map[string]int),
		Fail:      make(map[string]error),
	}
}

// Count returns how often method was called
func (f *Fake) Count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// SetFail makes method fail with err; a nil err clears the failure
func (f *Fake) SetFail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Fail, method)
		return
	}
	f.Fail[method] = err
}

// PutProduct stores p
func (f *Fake) PutProduct(p domain.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Products[p.ID] = p
}

// call records method and returns its configured failure. Callers hold f.mu.
func (f *Fake) call(method string) error {
	f.Calls[method]++
	return f.Fail[method]
}

func (f *Fake) products(activeOnly bool) []domain.Product {
	out := make([]domain.Product, 0, len(f.Products))
	for _, p := range f.Products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Fake) GetActiveProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetActiveProducts"); err != nil {
		return nil, err
	}
	return f.products(true), nil
}

func (f *Fake) GetAllProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetAllProducts"); err != nil {
		return nil, err
	}
	return f.products(false), nil
}

func (f *Fake) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetProduct"); err != nil {
		return nil, err
	}
	p, ok := f.Products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *Fake) GetFeaturedProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetFeaturedProducts"); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(f.Featured))
	for _, id := range f.Featured {
		if p, ok := f.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *Fake) SetFeaturedProducts(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("SetFeaturedProducts"); err != nil {
		return err
	}
	f.Featured = append([]string(nil), ids...)
	return nil
}

func (f *Fake) GetProductsByCategory(_ context.Context, category string) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetProductsByCategory"); err != nil {
		return nil, err
	}
	return domain.FilterByCategory(f.products(true), category), nil
}

func (f *Fake) GetAllCategories(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetAllCategories"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.Categories...), nil
}

func (f *Fake) AddCategory(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("AddCategory"); err != nil {
		return err
	}
	f.Categories = append(f.Categories, name)
	return nil
}

func (f *Fake) DeleteCategory(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteCategory"); err != nil {
		return err
	}
	kept := f.Categories[:0]
	for _, c := range f.Categories {
		if c != name {
			kept = append(kept, c)
		}
	}
	f.Categories = kept
	return nil
}

func (f *Fake) AddProduct(_ context.Context, in domain.ProductInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("AddProduct"); err != nil {
		return err
	}
	now := time.Now()
	f.Products[in.ID] = domain.Product{
		ID:          in.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Offer:       in.Offer,
		Category:    in.Category,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return nil
}

func (f *Fake) UpdateProduct(_ context.Context, in domain.ProductInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UpdateProduct"); err != nil {
		return err
	}
	p := f.Products[in.ID]
	p.ID, p.Name, p.Description, p.Price = in.ID, in.Name, in.Description, in.Price
	p.Offer, p.Category, p.IsActive = in.Offer, in.Category, in.IsActive
	p.UpdatedAt = time.Now()
	f.Products[in.ID] = p
	return nil
}

func (f *Fake) UpdateProductMedia(_ context.Context, productID string, images, videos []*media.Blob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UpdateProductMedia"); err != nil {
		return err
	}
	for _, b := range append(append([]*media.Blob(nil), images...), videos...) {
		if b.Pending() {
			b.ReportProgress(100)
		}
	}
	p := f.Products[productID]
	p.Images, p.Videos = images, videos
	f.Products[productID] = p
	return nil
}

func (f *Fake) IncrementProductViews(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("IncrementProductViews"); err != nil {
		return err
	}
	f.Views[productID]++
	return nil
}

func (f *Fake) GetProductStats(_ context.Context, id string) (*domain.ProductStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetProductStats"); err != nil {
		return nil, err
	}
	return &domain.ProductStats{ID: id, Views: f.Views[id]}, nil
}

func (f *Fake) GetAllProductStats(context.Context) ([]domain.ProductStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetAllProductStats"); err != nil {
		return nil, err
	}
	out := make([]domain.ProductStats, 0, len(f.Products))
	for _, p := range f.products(false) {
		out = append(out, domain.ProductStats{ID: p.ID, Views: f.Views[p.ID]})
	}
	return out, nil
}

func (f *Fake) CreateOrder(_ context.Context, o domain.NewOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateOrder"); err != nil {
		return err
	}
	order := domain.Order{
		ID:           o.ID,
		CustomerID:   f.Principal,
		CustomerName: o.Name,
		Phone:        o.Phone,
		Address:      o.Address,
		Status:       domain.OrderPending,
		CreatedAt:    time.Now(),
	}
	for _, item := range o.Cart {
		price := f.Products[item.ProductID].Price
		order.Items = append(order.Items, domain.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: price})
		order.TotalPrice += price * item.Quantity
	}
	order.UpdatedAt = order.CreatedAt
	f.Orders = append(f.Orders, order)
	return nil
}

func (f *Fake) ordersWhere(keep func(domain.Order) bool) []domain.Order {
	out := make([]domain.Order, 0, len(f.Orders))
	for _, o := range f.Orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

func (f *Fake) GetMyOrders(context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetMyOrders"); err != nil {
		return nil, err
	}
	return f.ordersWhere(func(o domain.Order) bool { return o.CustomerID == f.Principal }), nil
}

func (f *Fake) GetAllOrders(context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetAllOrders"); err != nil {
		return nil, err
	}
	return f.ordersWhere(func(domain.Order) bool { return true }), nil
}

func (f *Fake) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetOrder"); err != nil {
		return nil, err
	}
	for _, o := range f.Orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, nil
}

func (f *Fake) UpdateOrderStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UpdateOrderStatus"); err != nil {
		return err
	}
	for i := range f.Orders {
		if f.Orders[i].ID == orderID {
			f.Orders[i].Status = status
			f.Orders[i].UpdatedAt = time.Now()
		}
	}
	return nil
}

func (f *Fake) GetActiveOrders(context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetActiveOrders"); err != nil {
		return nil, err
	}
	return f.ordersWhere(func(o domain.Order) bool { return !o.Status.IsCompleted() }), nil
}

func (f *Fake) GetCompletedOrders(context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetCompletedOrders"); err != nil {
		return nil, err
	}
	return f.ordersWhere(func(o domain.Order) bool { return o.Status.IsCompleted() }), nil
}

func (f *Fake) GetCallerUserProfile(context.Context) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetCallerUserProfile"); err != nil {
		return nil, err
	}
	p, ok := f.Profiles[f.Principal]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *Fake) SaveCallerUserProfile(_ context.Context, profile domain.UserProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("SaveCallerUserProfile"); err != nil {
		return err
	}
	f.Profiles[f.Principal] = profile
	return nil
}

func (f *Fake) GetUserProfile(_ context.Context, principal string) (*domain.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetUserProfile"); err != nil {
		return nil, err
	}
	p, ok := f.Profiles[principal]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *Fake) IsCallerAdmin(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("IsCallerAdmin"); err != nil {
		return false, err
	}
	return f.Admins[f.Principal], nil
}

func (f *Fake) GetCallerUserRole(context.Context) (domain.UserRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetCallerUserRole"); err != nil {
		return "", err
	}
	switch {
	case f.Principal == "":
		return domain.RoleGuest, nil
	case f.Admins[f.Principal]:
		return domain.RoleAdmin, nil
	default:
		return domain.RoleUser, nil
	}
}

func (f *Fake) AssignCallerUserRole(_ context.Context, principal string, role domain.UserRole) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("AssignCallerUserRole"); err != nil {
		return err
	}
	f.Admins[principal] = role == domain.RoleAdmin
	return nil
}

func (f *Fake) GetStoreInfo(context.Context) (*domain.StoreInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetStoreInfo"); err != nil {
		return nil, err
	}
	info := f.Store
	return &info, nil
}

func (f *Fake) GetSystemStats(context.Context) (*domain.SystemStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetSystemStats"); err != nil {
		return nil, err
	}
	stats := &domain.SystemStats{
		TotalProducts:  int64(len(f.Products)),
		ActiveProducts: int64(len(f.products(true))),
		TotalOrders:    int64(len(f.Orders)),
	}
	for _, o := range f.Orders {
		if o.Status == domain.OrderPending {
			stats.PendingOrders++
		}
		if o.Status != domain.OrderCancelled {
			stats.TotalSales += o.TotalPrice
		}
	}
	return stats, nil
}

func (f *Fake) GetWishlist(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetWishlist"); err != nil {
		return nil, err
	}
	return append([]string(nil), f.Wishlist...), nil
}

func (f *Fake) AddToWishlist(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("AddToWishlist"); err != nil {
		return err
	}
	f.Wishlist = append(f.Wishlist, productID)
	return nil
}

func (f *Fake) RemoveFromWishlist(_ context.Context, productID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("RemoveFromWishlist"); err != nil {
		return err
	}
	kept := f.Wishlist[:0]
	for _, id := range f.Wishlist {
		if id != productID {
			kept = append(kept, id)
		}
	}
	f.Wishlist = kept
	return nil
}

// Caller is a settable domain.Caller
type Caller struct {
	mu        sync.Mutex
	backend   domain.Backend
	principal string
}

// NewCaller creates a caller; a nil backend means the actor is not ready, an empty
// principal means anonymous
func NewCaller(backend domain.Backend, principal string) *Caller {
	return &Caller{backend: backend, principal: principal}
}

func (c *Caller) Backend() (domain.Backend, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backend, c.backend != nil
}

func (c *Caller) Principal() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.principal, c.principal != ""
}

// Set switches backend and principal
func (c *Caller) Set(backend domain.Backend, principal string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend, c.principal = backend, principal
}
