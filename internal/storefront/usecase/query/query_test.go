package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/furniture-storefront/internal/query"
	"github.com/tair/furniture-storefront/internal/storefront/backendtest"
	"github.com/tair/furniture-storefront/internal/storefront/domain"
)

func newClient() *query.Client {
	return query.NewClient(query.NewMemoryStore(0), nil)
}

func TestQueriesLoadingUntilActorReady(t *testing.T) {
	caller := backendtest.NewCaller(nil, "")
	h := NewCatalogHandler(caller, newClient())
	ctx := context.Background()

	res := h.ActiveProducts(ctx)
	assert.True(t, res.Loading())
	assert.NoError(t, res.Err)

	backend := backendtest.New("")
	backend.PutProduct(domain.Product{ID: "p1", Name: "Sofa", IsActive: true})
	caller.Set(backend, "")

	res = h.ActiveProducts(ctx)
	require.True(t, res.Ready())
	assert.Len(t, res.Data, 1)
}

func TestScopedQueriesNeedIdentity(t *testing.T) {
	backend := backendtest.New("")
	caller := backendtest.NewCaller(backend, "")
	h := NewOrdersHandler(caller, newClient())

	res := h.MyOrders(context.Background())
	assert.True(t, res.Loading())
	assert.Equal(t, 0, backend.Count("GetMyOrders"))
}

func TestProductsFilterByCategory(t *testing.T) {
	backend := backendtest.New("")
	backend.PutProduct(domain.Product{ID: "p1", Category: "Sofas", IsActive: true})
	backend.PutProduct(domain.Product{ID: "p2", Category: "Tables", IsActive: true})
	backend.PutProduct(domain.Product{ID: "p3", Category: "sofas", IsActive: false})
	h := NewCatalogHandler(backendtest.NewCaller(backend, ""), newClient())
	ctx := context.Background()

	res := h.Products(ctx, ProductsQuery{Category: " sofas "})
	require.True(t, res.Ready())
	require.Len(t, res.Data, 1)
	assert.Equal(t, "p1", res.Data[0].ID)

	res = h.Products(ctx, ProductsQuery{Category: "sofas", IncludeInactive: true})
	assert.Len(t, res.Data, 2)
}

func TestProductMissingIsNil(t *testing.T) {
	h := NewCatalogHandler(backendtest.NewCaller(backendtest.New(""), ""), newClient())

	res := h.Product(context.Background(), "nope")
	require.True(t, res.Ready())
	assert.Nil(t, res.Data)
}

func TestProductIsCached(t *testing.T) {
	backend := backendtest.New("")
	backend.PutProduct(domain.Product{ID: "p1", Name: "Sofa"})
	h := NewCatalogHandler(backendtest.NewCaller(backend, ""), newClient())
	ctx := context.Background()

	h.Product(ctx, "p1")
	res := h.Product(ctx, "p1")

	assert.Equal(t, "Sofa", res.Data.Name)
	assert.Equal(t, 1, backend.Count("GetProduct"))
}

func TestIsAdminFalseWhenAnonymous(t *testing.T) {
	backend := backendtest.New("")
	h := NewAccountHandler(backendtest.NewCaller(backend, ""), newClient())

	res := h.IsAdmin(context.Background())

	assert.True(t, res.Ready())
	assert.False(t, res.Data)
	assert.NoError(t, res.Err)
	assert.Equal(t, 0, backend.Count("IsCallerAdmin"))
}

func TestIsAdminDegradesToFalseOnError(t *testing.T) {
	backend := backendtest.New("alice")
	backend.Admins["alice"] = true
	backend.SetFail("IsCallerAdmin", errors.New("backend down"))
	h := NewAccountHandler(backendtest.NewCaller(backend, "alice"), newClient())

	res := h.IsAdmin(context.Background())

	assert.True(t, res.Ready())
	assert.False(t, res.Data)
	assert.NoError(t, res.Err)
}

func TestIsAdminLoadingWhileActorBuilds(t *testing.T) {
	h := NewAccountHandler(backendtest.NewCaller(nil, "alice"), newClient())

	assert.True(t, h.IsAdmin(context.Background()).Loading())
}

func TestIsAdminScopedToPrincipal(t *testing.T) {
	client := newClient()
	ctx := context.Background()

	alice := backendtest.New("alice")
	alice.Admins["alice"] = true
	caller := backendtest.NewCaller(alice, "alice")
	h := NewAccountHandler(caller, client)
	require.True(t, h.IsAdmin(ctx).Data)

	bob := backendtest.New("bob")
	caller.Set(bob, "bob")

	assert.False(t, h.IsAdmin(ctx).Data, "cached value of another principal must not leak")
	assert.Equal(t, 1, bob.Count("IsCallerAdmin"))
}

func TestRoleOfAnonymousIsGuest(t *testing.T) {
	h := NewAccountHandler(backendtest.NewCaller(backendtest.New(""), ""), newClient())

	assert.Equal(t, domain.RoleGuest, h.Role(context.Background()).Data)
}

func TestQueryErrorsAreNotRetried(t *testing.T) {
	backend := backendtest.New("")
	backend.SetFail("GetStoreInfo", errors.New("timeout"))
	h := NewStoreHandler(backendtest.NewCaller(backend, ""), newClient())

	res := h.Info(context.Background())

	assert.Equal(t, query.StatusError, res.Status)
	assert.Equal(t, 1, backend.Count("GetStoreInfo"))
}
